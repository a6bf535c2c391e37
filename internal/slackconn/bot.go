package slackconn

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
)

// SocketBot handles Slack events via Socket Mode (xapp- token).
type SocketBot struct {
	client    *slack.Client
	sm        *socketmode.Client
	processor *Processor
	logger    *log.Logger
	botUserID string
	rate      *RateLimiter
}

// NewSocketBot constructs a Socket Mode bot. The slack.Client must be built
// with slack.OptionAppLevelToken.
func NewSocketBot(client *slack.Client, appToken string, processor *Processor, logger *log.Logger) (*SocketBot, error) {
	if client == nil {
		return nil, fmt.Errorf("nil slack client")
	}
	if appToken == "" {
		return nil, fmt.Errorf("app token required for socket mode")
	}
	if logger == nil {
		logger = log.New(os.Stdout, "[SlackBot] ", log.LstdFlags)
	}
	auth, err := client.AuthTest()
	if err != nil {
		return nil, fmt.Errorf("slack auth test failed: %w", err)
	}
	return &SocketBot{
		client:    client,
		sm:        socketmode.New(client),
		processor: processor,
		logger:    logger,
		botUserID: auth.UserID,
	}, nil
}

// SetRateLimiter enables message rate limiting.
func (b *SocketBot) SetRateLimiter(rl *RateLimiter) { b.rate = rl }

// Start begins the Socket Mode event loop and blocks until ctx is cancelled.
func (b *SocketBot) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		if err := b.sm.RunContext(ctx); err != nil {
			b.logger.Printf("socketmode run error: %v", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-b.sm.Events:
			b.handleEvent(ctx, ev)
		}
	}
}

func (b *SocketBot) handleEvent(ctx context.Context, ev socketmode.Event) {
	switch ev.Type {
	case socketmode.EventTypeConnecting, socketmode.EventTypeConnected:
		// connection lifecycle, nothing to do
	case socketmode.EventTypeInvalidAuth:
		b.logger.Printf("invalid_auth: verify SLACK_APP_TOKEN and SLACK_BOT_TOKEN")
	case socketmode.EventTypeConnectionError:
		b.logger.Printf("connection_error: %v", ev.Data)
	case socketmode.EventTypeIncomingError:
		b.logger.Printf("incoming_error: %v", ev.Data)
	case socketmode.EventTypeEventsAPI:
		// Ack first to avoid Slack retries
		if ev.Request != nil {
			b.sm.Ack(*ev.Request)
		}
		payload, ok := ev.Data.(slackevents.EventsAPIEvent)
		if !ok || payload.Type != slackevents.CallbackEvent {
			return
		}
		switch data := payload.InnerEvent.Data.(type) {
		case *slackevents.AppMentionEvent:
			b.processMessage(ctx, &slack.MessageEvent{Msg: slack.Msg{
				Channel:         data.Channel,
				User:            data.User,
				Text:            data.Text,
				Timestamp:       data.TimeStamp,
				ThreadTimestamp: data.ThreadTimeStamp,
			}})
		case *slackevents.MessageEvent:
			if data.SubType != "" {
				return
			}
			b.processMessage(ctx, &slack.MessageEvent{Msg: slack.Msg{
				Channel:         data.Channel,
				User:            data.User,
				Text:            data.Text,
				Timestamp:       data.TimeStamp,
				ThreadTimestamp: data.ThreadTimeStamp,
			}})
		}
	}
}

func (b *SocketBot) processMessage(ctx context.Context, msg *slack.MessageEvent) {
	if !b.processor.IsMentionOrDM(b.botUserID, msg) {
		return
	}
	if b.rate != nil && !b.rate.Allow(msg.User, msg.Channel) {
		b.logger.Printf("rate_limit_exceeded user=%s channel=%s", msg.User, msg.Channel)
		return
	}

	reply := b.processor.ProcessMessage(ctx, b.botUserID, msg)
	if reply == nil {
		return
	}

	for _, opt := range reply.MsgOptions {
		// Always reply in thread; start one if the message was top-level.
		threadTS := msg.ThreadTimestamp
		if threadTS == "" {
			threadTS = msg.Timestamp
		}
		opt = slack.MsgOptionCompose(opt, slack.MsgOptionTS(threadTS))
		if _, _, err := b.client.PostMessage(reply.Channel, opt); err != nil {
			b.logger.Printf("event=post_message status=error err=%v", err)
		} else {
			// slack rate limits; small sleep to be safe
			time.Sleep(50 * time.Millisecond)
		}
	}
}
