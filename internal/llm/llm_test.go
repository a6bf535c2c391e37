package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitSystem(t *testing.T) {
	messages := []Message{
		{Role: RoleSystem, Content: "You are terse."},
		{Role: RoleUser, Content: "hi"},
		{Role: RoleSystem, Content: "Answer in English."},
		{Role: RoleAssistant, Content: "hello"},
	}

	system, rest := SplitSystem(messages)
	assert.Equal(t, "You are terse.\n\nAnswer in English.", system)
	assert.Len(t, rest, 2)
	assert.Equal(t, RoleUser, rest[0].Role)
	assert.Equal(t, RoleAssistant, rest[1].Role)
}

func TestSplitSystem_NoSystem(t *testing.T) {
	messages := []Message{{Role: RoleUser, Content: "hi"}}
	system, rest := SplitSystem(messages)
	assert.Empty(t, system)
	assert.Equal(t, messages, rest)
}
