package slackconn

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/slack-go/slack"
)

// Formatter builds Block Kit responses for the bot.
type Formatter struct{}

// BuildUsage creates a short usage tip.
func (f *Formatter) BuildUsage(tip string) slack.MsgOption {
	blocks := []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, ":information_source: Usage", false, false), nil, nil),
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, tip, false, false), nil, nil),
	}
	return slack.MsgOptionBlocks(blocks...)
}

// BuildAnswer formats an LLM answer. Long answers are split into section
// blocks because Slack caps a text block at 3000 characters.
func (f *Formatter) BuildAnswer(query, answer string, elapsed time.Duration) slack.MsgOption {
	header := slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, truncate(query, 60), false, false))
	intro := slack.NewContextBlock("", slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("answered in %.0f ms", elapsed.Seconds()*1000), false, false))

	blocks := []slack.Block{header, intro}
	for _, section := range splitSections(answer) {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, section, false, false), nil, nil))
	}

	footer := slack.NewContextBlock("", slack.NewTextBlockObject(slack.MarkdownType, "generated by bmasterai", false, false))
	blocks = append(blocks, footer)
	return slack.MsgOptionBlocks(blocks...)
}

// BuildError renders a failure notice.
func (f *Formatter) BuildError(message string) slack.MsgOption {
	blocks := []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, ":warning: Something went wrong", false, false), nil, nil),
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, message, false, false), nil, nil),
	}
	return slack.MsgOptionBlocks(blocks...)
}

// sectionLimit is Slack's character cap for one text block.
const sectionLimit = 3000

// splitSections packs answer lines into pieces that each fit a section
// block. Lines longer than the cap are hard-split on rune boundaries.
func splitSections(answer string) []string {
	var sections []string
	current := ""
	flush := func() {
		if current != "" {
			sections = append(sections, current)
			current = ""
		}
	}

	for _, line := range strings.Split(answer, "\n") {
		for utf8.RuneCountInString(line) > sectionLimit {
			flush()
			runes := []rune(line)
			sections = append(sections, string(runes[:sectionLimit]))
			line = string(runes[sectionLimit:])
		}

		candidate := line
		if current != "" {
			candidate = current + "\n" + line
		}
		if utf8.RuneCountInString(candidate) > sectionLimit {
			flush()
			current = line
		} else {
			current = candidate
		}
	}
	flush()
	return sections
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
