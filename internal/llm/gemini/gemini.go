// Package gemini adapts the Gemini API (Google AI or Vertex AI backends) to
// the llm.ChatClient interface.
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/travis-burmaster/bmasterai/internal/llm"
)

// Options configures the Gemini adapter. When Project is set the client
// targets the Vertex AI backend instead of the Gemini API.
type Options struct {
	Model    string
	APIKey   string
	Project  string
	Location string
}

// Client wraps the genai SDK behind llm.ChatClient.
type Client struct {
	client *genai.Client
	opts   Options
}

// NewClient creates a Gemini chat client.
func NewClient(ctx context.Context, optFns ...func(o *Options)) (*Client, error) {
	opts := Options{
		Model:    "gemini-2.0-flash",
		Location: "us-central1",
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	cc := &genai.ClientConfig{}
	if opts.Project != "" {
		cc.Backend = genai.BackendVertexAI
		cc.Project = opts.Project
		cc.Location = opts.Location
	} else {
		cc.Backend = genai.BackendGeminiAPI
		cc.APIKey = opts.APIKey
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Client{client: client, opts: opts}, nil
}

// ModelID returns the configured model identifier.
func (c *Client) ModelID() string { return c.opts.Model }

// Chat sends the conversation and returns the model reply.
func (c *Client) Chat(ctx context.Context, messages []llm.Message) (*llm.Reply, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("messages cannot be empty")
	}

	system, turns := llm.SplitSystem(messages)

	contents := make([]*genai.Content, 0, len(turns))
	for _, msg := range turns {
		role := genai.RoleUser
		if msg.Role == llm.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, genai.Role(role)))
	}

	var cfg *genai.GenerateContentConfig
	if system != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		}
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.opts.Model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini api error: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("gemini response contained no text")
	}

	reply := &llm.Reply{Text: text, Model: c.opts.Model}
	if resp.UsageMetadata != nil {
		reply.InputTokens = int64(resp.UsageMetadata.PromptTokenCount)
		reply.OutputTokens = int64(resp.UsageMetadata.CandidatesTokenCount)
	}
	return reply, nil
}
