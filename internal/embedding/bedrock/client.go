// Package bedrock generates text embeddings with Amazon Titan models on
// AWS Bedrock.
package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

const defaultModelID = "amazon.titan-embed-text-v2:0"

// modelDimensions maps known Titan embedding models to their output size.
var modelDimensions = map[string]int{
	"amazon.titan-embed-text-v2:0": 1024,
	"amazon.titan-embed-text-v1":   1536,
}

// titanRequest is the InvokeModel payload for Titan embedding models.
type titanRequest struct {
	InputText  string `json:"inputText"`
	Dimensions int    `json:"dimensions,omitempty"`
	Normalize  bool   `json:"normalize,omitempty"`
}

// titanResponse is the InvokeModel response from Titan embedding models.
type titanResponse struct {
	Embedding           []float32 `json:"embedding"`
	InputTextTokenCount int       `json:"inputTextTokenCount"`
}

// invokeAPI is the Bedrock runtime subset used by the client.
type invokeAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Client calls a Titan embedding model on Bedrock.
type Client struct {
	api     invokeAPI
	modelID string
	logger  *log.Logger
}

// NewClient creates an embedding client for the given model. An empty
// modelID selects Titan v2.
func NewClient(awsConfig aws.Config, modelID string) *Client {
	if modelID == "" {
		modelID = defaultModelID
	}
	return &Client{
		api:     bedrockruntime.NewFromConfig(awsConfig),
		modelID: modelID,
		logger:  log.New(os.Stdout, "[Bedrock] ", log.LstdFlags),
	}
}

// NewClientWithAPI injects a custom runtime API. Tests only.
func NewClientWithAPI(api invokeAPI, modelID string) *Client {
	if modelID == "" {
		modelID = defaultModelID
	}
	return &Client{
		api:     api,
		modelID: modelID,
		logger:  log.New(os.Stdout, "[Bedrock] ", log.LstdFlags),
	}
}

// ModelID returns the configured model identifier.
func (c *Client) ModelID() string {
	return c.modelID
}

// Dimensions returns the embedding vector size for the configured model.
func (c *Client) Dimensions() int {
	if dim, ok := modelDimensions[c.modelID]; ok {
		return dim
	}
	return modelDimensions[defaultModelID]
}

// GenerateEmbedding returns the normalized embedding vector for text.
func (c *Client) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	request := titanRequest{
		InputText: text,
		Normalize: true,
	}
	if c.modelID == defaultModelID {
		request.Dimensions = c.Dimensions()
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding request: %w", err)
	}

	result, err := c.api.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke bedrock model %s: %w", c.modelID, err)
	}

	var response titanResponse
	if err := json.Unmarshal(result.Body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse embedding response: %w", err)
	}
	if len(response.Embedding) == 0 {
		return nil, fmt.Errorf("no embedding data in response (token count: %d)", response.InputTextTokenCount)
	}

	c.logger.Printf("embedded %d chars into %d dimensions (%d tokens)",
		len(text), len(response.Embedding), response.InputTextTokenCount)
	return response.Embedding, nil
}

// ValidateConnection performs a minimal embedding call to confirm the model
// is reachable and the credentials work.
func (c *Client) ValidateConnection(ctx context.Context) error {
	if _, err := c.GenerateEmbedding(ctx, "connection test"); err != nil {
		return fmt.Errorf("bedrock connection validation failed: %w", err)
	}
	return nil
}
