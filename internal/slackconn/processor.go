package slackconn

import (
	"context"
	"strings"
	"time"

	"github.com/slack-go/slack"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/travis-burmaster/bmasterai/internal/monitor"
)

var slackTracer = otel.Tracer("bmasterai/slackconn")

// Responder answers a user question. The slack-bot command wires this to the
// RAG query service or directly to an LLM chat client.
type Responder interface {
	Answer(ctx context.Context, query string) (string, error)
}

// ResponderFunc adapts a function to the Responder interface.
type ResponderFunc func(ctx context.Context, query string) (string, error)

func (f ResponderFunc) Answer(ctx context.Context, query string) (string, error) {
	return f(ctx, query)
}

// Processor turns an incoming Slack message into a reply.
type Processor struct {
	detector        *MentionDetector
	responder       Responder
	format          *Formatter
	events          *monitor.Logger
	responseTimeout time.Duration
	threading       bool
}

func NewProcessor(responder Responder, events *monitor.Logger) *Processor {
	return &Processor{
		detector:  &MentionDetector{},
		responder: responder,
		format:    &Formatter{},
		events:    events,
	}
}

// SetResponseTimeout bounds how long one answer may take. Zero disables the
// bound.
func (p *Processor) SetResponseTimeout(d time.Duration) { p.responseTimeout = d }

// SetThreading makes replies go to the originating message's thread.
func (p *Processor) SetThreading(enabled bool) { p.threading = enabled }

// IsMentionOrDM reports whether the message targets the bot or is a DM.
func (p *Processor) IsMentionOrDM(botUserID string, msg *slack.MessageEvent) bool {
	if msg == nil {
		return false
	}
	return p.detector.IsMentionToBot(botUserID, msg) || p.detector.IsDirectMessage(msg)
}

// Reply is a transport-agnostic response later turned into slack.MsgOption.
type Reply struct {
	Channel    string
	MsgOptions []slack.MsgOption
}

// ProcessMessage handles a Slack message and returns a reply or nil.
func (p *Processor) ProcessMessage(ctx context.Context, botUserID string, msg *slack.MessageEvent) *Reply {
	if msg == nil || msg.User == botUserID {
		return nil
	}

	isMention := p.detector.IsMentionToBot(botUserID, msg)
	isDM := p.detector.IsDirectMessage(msg)
	if !isMention && !isDM {
		return nil
	}

	ctx, span := slackTracer.Start(ctx, "slackconn.process_message")
	defer span.End()
	span.SetAttributes(
		attribute.String("slack.channel", msg.Channel),
		attribute.Bool("slack.is_mention", isMention),
		attribute.Bool("slack.is_dm", isDM),
	)

	monitor.RecordInvocation(monitor.ModeSlack)

	query := ExtractQuery(botUserID, msg.Text)
	if query == "" {
		span.SetStatus(codes.Error, "empty query")
		opts := p.format.BuildUsage("Ask me a question, e.g. `@bmasterai summarize the latest agent failures`")
		return p.reply(msg, opts)
	}

	answerCtx := ctx
	if p.responseTimeout > 0 {
		var cancel context.CancelFunc
		answerCtx, cancel = context.WithTimeout(ctx, p.responseTimeout)
		defer cancel()
	}

	start := time.Now()
	answer, err := p.responder.Answer(answerCtx, query)
	elapsed := time.Since(start)
	recordSlackMetrics(ctx, elapsed, err != nil)

	if p.events != nil {
		level := monitor.LevelInfo
		if err != nil {
			level = monitor.LevelError
		}
		p.events.LogEvent(monitor.NewEvent("slack-bot", monitor.EventTaskComplete, level, "answered slack question").
			WithMetadata(map[string]interface{}{
				"channel":     msg.Channel,
				"duration_ms": elapsed.Milliseconds(),
			}))
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		opts := p.format.BuildError("I could not answer that right now. Please try again in a moment.")
		return p.reply(msg, opts)
	}
	if strings.TrimSpace(answer) == "" {
		opts := p.format.BuildError("The model returned an empty answer.")
		return p.reply(msg, opts)
	}

	return p.reply(msg, p.format.BuildAnswer(query, answer, elapsed))
}

func (p *Processor) reply(msg *slack.MessageEvent, opts ...slack.MsgOption) *Reply {
	if p.threading {
		ts := msg.ThreadTimestamp
		if ts == "" {
			ts = msg.Timestamp
		}
		if ts != "" {
			opts = append(opts, slack.MsgOptionTS(ts))
		}
	}
	return &Reply{Channel: msg.Channel, MsgOptions: opts}
}
