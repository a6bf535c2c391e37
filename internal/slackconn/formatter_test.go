package slackconn

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSections_ShortAnswerSinglePiece(t *testing.T) {
	sections := splitSections("one line\nanother line")
	require.Len(t, sections, 1)
	assert.Equal(t, "one line\nanother line", sections[0])
}

func TestSplitSections_PacksLinesUpToLimit(t *testing.T) {
	line := strings.Repeat("a", 1200)
	sections := splitSections(line + "\n" + line + "\n" + line)
	require.Len(t, sections, 2)
	for _, section := range sections {
		assert.LessOrEqual(t, utf8.RuneCountInString(section), sectionLimit)
	}
}

func TestSplitSections_HardSplitsOversizedLine(t *testing.T) {
	sections := splitSections(strings.Repeat("x", sectionLimit+500))
	require.Len(t, sections, 2)
	assert.Equal(t, sectionLimit, utf8.RuneCountInString(sections[0]))
	assert.Equal(t, 500, utf8.RuneCountInString(sections[1]))
}

func TestSplitSections_OversizedMultibyteLineStaysValidUTF8(t *testing.T) {
	sections := splitSections(strings.Repeat("日", sectionLimit+10))
	require.Len(t, sections, 2)
	for _, section := range sections {
		assert.True(t, utf8.ValidString(section))
		assert.LessOrEqual(t, utf8.RuneCountInString(section), sectionLimit)
	}
}

func TestTruncate_RuneSafe(t *testing.T) {
	got := truncate(strings.Repeat("日", 100), 60)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 60, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestTruncate_ShortStringUnchanged(t *testing.T) {
	assert.Equal(t, "hello", truncate("hello", 60))
}
