// Package bedrock adapts Claude models on AWS Bedrock InvokeModel to the
// llm.ChatClient interface.
package bedrock

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/travis-burmaster/bmasterai/internal/llm"
)

const defaultChatModel = "anthropic.claude-3-5-sonnet-20240620-v1:0"

// Client invokes chat models hosted on AWS Bedrock.
type Client struct {
	client  *bedrockruntime.Client
	modelID string
	region  string
}

// claudeMessage mirrors the Bedrock-native Anthropic message shape.
type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeRequest is the Bedrock request payload for Claude chat models.
type claudeRequest struct {
	Messages         []claudeMessage `json:"messages"`
	MaxTokens        int             `json:"max_tokens,omitempty"`
	Temperature      float64         `json:"temperature,omitempty"`
	AnthropicVersion string          `json:"anthropic_version,omitempty"`
	System           string          `json:"system,omitempty"`
}

type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type claudeUsage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

type claudeResponse struct {
	Content []claudeContent `json:"content"`
	Usage   claudeUsage     `json:"usage,omitempty"`
}

// NewClient creates a Bedrock chat client for the given model.
func NewClient(awsConfig aws.Config, modelID string) *Client {
	if modelID == "" {
		modelID = defaultChatModel
	}
	return &Client{
		client:  bedrockruntime.NewFromConfig(awsConfig),
		modelID: modelID,
		region:  awsConfig.Region,
	}
}

// ModelID returns the configured model identifier.
func (c *Client) ModelID() string { return c.modelID }

// Region returns the AWS region in use.
func (c *Client) Region() string { return c.region }

// Chat sends the conversation to a Claude model on Bedrock.
func (c *Client) Chat(ctx context.Context, messages []llm.Message) (*llm.Reply, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("messages cannot be empty")
	}

	system, turns := llm.SplitSystem(messages)
	if len(turns) == 0 {
		return nil, fmt.Errorf("chat messages must include at least one user or assistant message")
	}

	sanitized := make([]claudeMessage, 0, len(turns))
	for _, msg := range turns {
		sanitized = append(sanitized, claudeMessage{Role: string(msg.Role), Content: msg.Content})
	}

	request := claudeRequest{
		Messages:         sanitized,
		MaxTokens:        4000,
		Temperature:      0.7,
		AnthropicVersion: "bedrock-2023-05-31",
		System:           system,
	}

	requestBody, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	result, err := c.invoke(ctx, requestBody)
	if err != nil {
		return nil, err
	}

	var response claudeResponse
	if err := json.Unmarshal(result, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(response.Content) == 0 {
		return nil, fmt.Errorf("no content in response")
	}

	return &llm.Reply{
		Text:         response.Content[0].Text,
		Model:        c.modelID,
		InputTokens:  response.Usage.InputTokens,
		OutputTokens: response.Usage.OutputTokens,
	}, nil
}

// ValidateConnection issues a minimal request to confirm the model is
// reachable with the current credentials.
func (c *Client) ValidateConnection(ctx context.Context) error {
	if _, err := c.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: "Hello"}}); err != nil {
		return fmt.Errorf("connection validation failed: %w", err)
	}
	return nil
}

func (c *Client) invoke(ctx context.Context, body []byte) ([]byte, error) {
	input := &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	}

	result, err := c.client.InvokeModel(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke bedrock model: %w", err)
	}
	return result.Body, nil
}
