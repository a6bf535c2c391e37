package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	appconfig "github.com/travis-burmaster/bmasterai/internal/config"
	"github.com/travis-burmaster/bmasterai/internal/embedding/bedrock"
	"github.com/travis-burmaster/bmasterai/internal/llm"
	llmanthropic "github.com/travis-burmaster/bmasterai/internal/llm/anthropic"
	llmbedrock "github.com/travis-burmaster/bmasterai/internal/llm/bedrock"
	llmgemini "github.com/travis-burmaster/bmasterai/internal/llm/gemini"
	llmopenai "github.com/travis-burmaster/bmasterai/internal/llm/openai"
	"github.com/travis-burmaster/bmasterai/internal/monitor"
	"github.com/travis-burmaster/bmasterai/internal/observability"
	"github.com/travis-burmaster/bmasterai/internal/qdrantstore"
	"github.com/travis-burmaster/bmasterai/internal/rag"
)

// newChatClient builds the chat client selected by LLM_PROVIDER.
func newChatClient(ctx context.Context, cfg *appconfig.Config) (llm.ChatClient, error) {
	switch strings.ToLower(cfg.LLMProvider) {
	case "anthropic":
		return llmanthropic.NewClient(func(o *llmanthropic.Options) {
			o.APIKey = cfg.AnthropicAPIKey
		}), nil
	case "openai":
		return llmopenai.NewClient(func(o *llmopenai.Options) {
			o.APIKey = cfg.OpenAIAPIKey
		}), nil
	case "bedrock":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return llmbedrock.NewClient(awsCfg, cfg.ChatModel), nil
	case "gemini":
		return llmgemini.NewClient(ctx, func(o *llmgemini.Options) {
			o.APIKey = cfg.GeminiAPIKey
			o.Model = cfg.GeminiModel
		})
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}
}

// newEmbedder builds the Bedrock Titan embedding client.
func newEmbedder(ctx context.Context, cfg *appconfig.Config) (*bedrock.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return bedrock.GetSharedClient(awsCfg, cfg.EmbeddingModel), nil
}

// newQueryService wires the embedder, vector store and chat client into a
// ready RAG query service.
func newQueryService(ctx context.Context, cfg *appconfig.Config) (*rag.QueryService, error) {
	embedder, err := newEmbedder(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := qdrantstore.New(cfg, embedder.Dimensions())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Qdrant: %w", err)
	}

	chat, err := newChatClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return rag.NewQueryService(embedder, store, chat, cfg.TopK), nil
}

// newEventLogger opens the JSONL monitor event log configured for the
// toolkit.
func newEventLogger(cfg *appconfig.Config) (*monitor.Logger, error) {
	events, err := monitor.NewLogger(cfg.EventLogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log: %w", err)
	}
	return events, nil
}

// initObservability starts OpenTelemetry export when OTEL_ENABLED is set and
// returns a shutdown func to defer. Disabled or failed setup degrades to a
// no-op so servers keep running without telemetry.
func initObservability(cfg *appconfig.Config) observability.ShutdownFunc {
	noop := func(context.Context) error { return nil }
	if !cfg.OTelEnabled {
		return noop
	}

	shutdown, err := observability.Init(cfg)
	if err != nil {
		log.Printf("observability setup failed, continuing without telemetry: %v", err)
		return noop
	}
	if err := monitor.InitOTelMetrics(); err != nil {
		log.Printf("failed to register invocation metrics: %v", err)
	}
	return shutdown
}
