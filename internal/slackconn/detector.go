package slackconn

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/slack-go/slack"
)

// MentionDetector determines whether a message targets the bot.
type MentionDetector struct{}

// IsMentionToBot returns true when the message text mentions the bot user.
func (d *MentionDetector) IsMentionToBot(botUserID string, msg *slack.MessageEvent) bool {
	if msg == nil {
		return false
	}
	return strings.Contains(msg.Text, fmt.Sprintf("<@%s>", botUserID))
}

// IsDirectMessage reports whether the message arrived in a DM channel.
// Direct message channel ids start with D.
func (d *MentionDetector) IsDirectMessage(msg *slack.MessageEvent) bool {
	if msg == nil {
		return false
	}
	return strings.HasPrefix(msg.Channel, "D")
}

var angleMention = regexp.MustCompile(`<@([A-Z0-9]+)>`)

// ExtractQuery strips bot mentions from the message text and returns the
// remaining question.
func ExtractQuery(botUserID, text string) string {
	return strings.TrimSpace(angleMention.ReplaceAllString(text, ""))
}
