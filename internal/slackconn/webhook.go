// Package slackconn connects the toolkit to Slack: an incoming-webhook
// notifier for monitoring alerts and a Socket Mode bot that answers
// questions through the configured LLM provider.
package slackconn

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"

	"github.com/travis-burmaster/bmasterai/internal/monitor"
)

// levelColors maps alert severity to Slack attachment colors.
var levelColors = map[monitor.Level]string{
	monitor.LevelDebug:    "#9e9e9e",
	monitor.LevelInfo:     "#36a64f",
	monitor.LevelWarning:  "#ff9800",
	monitor.LevelError:    "#f44336",
	monitor.LevelCritical: "#b71c1c",
}

// WebhookNotifier delivers alerts to a Slack incoming webhook.
type WebhookNotifier struct {
	webhookURL string
	username   string
	channel    string
}

// WebhookOption customizes a WebhookNotifier.
type WebhookOption func(*WebhookNotifier)

// WithUsername overrides the webhook's display name.
func WithUsername(name string) WebhookOption {
	return func(n *WebhookNotifier) { n.username = name }
}

// WithChannel overrides the webhook's default channel.
func WithChannel(channel string) WebhookOption {
	return func(n *WebhookNotifier) { n.channel = channel }
}

// NewWebhookNotifier creates a notifier for the given incoming webhook URL.
func NewWebhookNotifier(webhookURL string, opts ...WebhookOption) (*WebhookNotifier, error) {
	if webhookURL == "" {
		return nil, fmt.Errorf("slack webhook URL cannot be empty")
	}
	n := &WebhookNotifier{
		webhookURL: webhookURL,
		username:   "bmasterai",
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// Notify implements monitor.Notifier. The alert is rendered as a single
// color-coded attachment so severity is visible at a glance.
func (n *WebhookNotifier) Notify(ctx context.Context, title, message string, level monitor.Level) error {
	color, ok := levelColors[level]
	if !ok {
		color = levelColors[monitor.LevelInfo]
	}

	msg := &slack.WebhookMessage{
		Username: n.username,
		Channel:  n.channel,
		Attachments: []slack.Attachment{
			{
				Color:      color,
				Title:      title,
				Text:       message,
				Footer:     "bmasterai monitoring",
				MarkdownIn: []string{"text"},
				Fields: []slack.AttachmentField{
					{Title: "Severity", Value: string(level), Short: true},
				},
			},
		},
	}

	if err := slack.PostWebhookContext(ctx, n.webhookURL, msg); err != nil {
		return fmt.Errorf("failed to post slack webhook: %w", err)
	}
	return nil
}

// Name implements monitor.Notifier.
func (n *WebhookNotifier) Name() string { return "slack" }

// SetWebhookURL overrides the target URL. Tests point this at an httptest
// server.
func (n *WebhookNotifier) SetWebhookURL(url string) { n.webhookURL = url }
