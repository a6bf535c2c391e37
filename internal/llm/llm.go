// Package llm defines the provider-neutral chat interface shared by the
// Anthropic, OpenAI, Bedrock, and Gemini adapters.
package llm

import "context"

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single chat turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Reply is the provider response to a chat request. Token counts are zero
// when the provider does not report usage.
type Reply struct {
	Text         string `json:"text"`
	Model        string `json:"model"`
	InputTokens  int64  `json:"input_tokens,omitempty"`
	OutputTokens int64  `json:"output_tokens,omitempty"`
}

// ChatClient is implemented by every provider adapter.
type ChatClient interface {
	Chat(ctx context.Context, messages []Message) (*Reply, error)
	ModelID() string
}

// SplitSystem separates system prompts from the conversational turns.
// Providers that carry the system prompt out-of-band (Anthropic, Gemini,
// Bedrock Claude) use this before building their request.
func SplitSystem(messages []Message) (system string, rest []Message) {
	rest = make([]Message, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == RoleSystem {
			if system != "" {
				system += "\n\n"
			}
			system += msg.Content
			continue
		}
		rest = append(rest, msg)
	}
	return system, rest
}
