package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	env "github.com/netflix/go-env"
	"github.com/joho/godotenv"
)

// Config holds the toolkit-wide configuration resolved from environment
// variables. Integration-specific blocks (Slack, Telegram) have their own
// loaders below.
type Config struct {
	// Monitoring
	EventLogPath   string `json:"event_log_path" env:"BMASTERAI_EVENT_LOG,required=false"`
	AlertRulesPath string `json:"alert_rules_path" env:"BMASTERAI_ALERT_RULES,required=false"`

	// AWS
	AWSRegion      string `json:"aws_region" env:"AWS_REGION,default=us-east-1"`
	EmbeddingModel string `json:"embedding_model" env:"EMBEDDING_MODEL,default=amazon.titan-embed-text-v2:0"`
	ChatModel      string `json:"chat_model" env:"CHAT_MODEL,default=anthropic.claude-3-5-sonnet-20240620-v1:0"`

	// LLM providers
	LLMProvider     string `json:"llm_provider" env:"LLM_PROVIDER,default=anthropic"`
	AnthropicAPIKey string `json:"-" env:"ANTHROPIC_API_KEY,required=false"`
	OpenAIAPIKey    string `json:"-" env:"OPENAI_API_KEY,required=false"`
	GeminiAPIKey    string `json:"-" env:"GEMINI_API_KEY,required=false"`
	GeminiModel     string `json:"gemini_model" env:"GEMINI_MODEL,default=gemini-2.0-flash"`

	// Qdrant
	QdrantHost       string `json:"qdrant_host" env:"QDRANT_HOST,default=localhost"`
	QdrantPort       int    `json:"qdrant_port" env:"QDRANT_PORT,default=6334"`
	QdrantAPIKey     string `json:"-" env:"QDRANT_API_KEY,required=false"`
	QdrantUseTLS     bool   `json:"qdrant_use_tls" env:"QDRANT_USE_TLS,default=false"`
	QdrantCollection string `json:"qdrant_collection" env:"QDRANT_COLLECTION,default=bmasterai-docs"`

	// RAG pipeline
	Concurrency   int           `json:"concurrency" env:"VECTORIZE_CONCURRENCY,default=8"`
	RetryAttempts int           `json:"retry_attempts" env:"VECTORIZE_RETRY_ATTEMPTS,default=0"`
	RetryDelay    time.Duration `json:"retry_delay" env:"VECTORIZE_RETRY_DELAY,default=2s"`
	TopK          int           `json:"top_k" env:"RAG_TOP_K,default=5"`

	// GitHub
	GitHubToken string `json:"-" env:"GITHUB_TOKEN,required=false"`

	// Alpha Vantage
	AlphaVantageAPIKey string `json:"-" env:"ALPHA_VANTAGE_API_KEY,required=false"`

	// MCP server
	MCPServerHost            string        `json:"mcp_server_host" env:"MCP_SERVER_HOST,default=localhost"`
	MCPServerPort            int           `json:"mcp_server_port" env:"MCP_SERVER_PORT,default=8080"`
	MCPServerReadTimeout     time.Duration `json:"mcp_server_read_timeout" env:"MCP_SERVER_READ_TIMEOUT,default=30s"`
	MCPServerWriteTimeout    time.Duration `json:"mcp_server_write_timeout" env:"MCP_SERVER_WRITE_TIMEOUT,default=30s"`
	MCPServerIdleTimeout     time.Duration `json:"mcp_server_idle_timeout" env:"MCP_SERVER_IDLE_TIMEOUT,default=120s"`
	MCPServerShutdownTimeout time.Duration `json:"mcp_server_shutdown_timeout" env:"MCP_SERVER_SHUTDOWN_TIMEOUT,default=30s"`
	MCPIPAuthEnabled         bool          `json:"mcp_ip_auth_enabled" env:"MCP_IP_AUTH_ENABLED,default=false"`
	MCPAllowedIPsStr         string        `json:"-" env:"MCP_ALLOWED_IPS,required=false"`
	MCPAllowedIPs            []string      `json:"mcp_allowed_ips"`
	MCPOIDCEnabled           bool          `json:"mcp_oidc_enabled" env:"MCP_OIDC_ENABLED,default=false"`
	MCPOIDCIssuer            string        `json:"mcp_oidc_issuer" env:"MCP_OIDC_ISSUER,required=false"`
	MCPOIDCAudience          string        `json:"mcp_oidc_audience" env:"MCP_OIDC_AUDIENCE,required=false"`

	// OpenTelemetry
	OTelEnabled              bool    `json:"otel_enabled" env:"OTEL_ENABLED,default=false"`
	OTelServiceName          string  `json:"otel_service_name" env:"OTEL_SERVICE_NAME,default=bmasterai"`
	OTelExporterOTLPEndpoint string  `json:"otel_exporter_otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT,required=false"`
	OTelExporterOTLPProtocol string  `json:"otel_exporter_otlp_protocol" env:"OTEL_EXPORTER_OTLP_PROTOCOL,default=http/protobuf"`
	OTelResourceAttributes   string  `json:"otel_resource_attributes" env:"OTEL_RESOURCE_ATTRIBUTES,required=false"`
	OTelTracesSampler        string  `json:"otel_traces_sampler" env:"OTEL_TRACES_SAMPLER,default=always_on"`
	OTelTracesSamplerArg     float64 `json:"otel_traces_sampler_arg" env:"OTEL_TRACES_SAMPLER_ARG,default=1.0"`
}

// Load reads configuration from .env (when present) and the environment.
func Load() (*Config, error) {
	// .env is optional; ignore absence
	_ = godotenv.Load()

	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if config.MCPAllowedIPsStr != "" {
		ips := strings.Split(config.MCPAllowedIPsStr, ",")
		config.MCPAllowedIPs = make([]string, 0, len(ips))
		for _, ip := range ips {
			if trimmed := strings.TrimSpace(ip); trimmed != "" {
				config.MCPAllowedIPs = append(config.MCPAllowedIPs, trimmed)
			}
		}
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// validateConfig validates configuration values and clamps them to safe ranges.
func validateConfig(config *Config) error {
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}
	if config.Concurrency > 20 {
		config.Concurrency = 20
	}

	if config.RetryAttempts < 0 {
		config.RetryAttempts = 0
	}
	if config.RetryAttempts > 10 {
		config.RetryAttempts = 10
	}

	if config.TopK < 1 {
		config.TopK = 1
	}
	if config.TopK > 100 {
		config.TopK = 100
	}

	switch strings.ToLower(config.LLMProvider) {
	case "anthropic", "openai", "bedrock", "gemini":
	default:
		return fmt.Errorf("LLM_PROVIDER must be one of anthropic, openai, bedrock, gemini; got %q", config.LLMProvider)
	}

	if config.QdrantPort < 1 || config.QdrantPort > 65535 {
		return fmt.Errorf("QDRANT_PORT must be between 1 and 65535")
	}

	if err := validateMCPConfig(config); err != nil {
		return fmt.Errorf("MCP server configuration validation failed: %w", err)
	}

	return nil
}

// validateMCPConfig validates MCP server-specific configuration.
func validateMCPConfig(config *Config) error {
	if config.MCPServerPort < 1 || config.MCPServerPort > 65535 {
		return fmt.Errorf("MCP_SERVER_PORT must be between 1 and 65535")
	}
	if config.MCPServerHost == "" {
		return fmt.Errorf("MCP_SERVER_HOST cannot be empty")
	}

	if config.MCPServerReadTimeout <= 0 {
		return fmt.Errorf("MCP_SERVER_READ_TIMEOUT must be greater than 0")
	}
	if config.MCPServerWriteTimeout <= 0 {
		return fmt.Errorf("MCP_SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if config.MCPServerIdleTimeout <= 0 {
		return fmt.Errorf("MCP_SERVER_IDLE_TIMEOUT must be greater than 0")
	}
	if config.MCPServerShutdownTimeout <= 0 {
		return fmt.Errorf("MCP_SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}

	if config.MCPIPAuthEnabled && len(config.MCPAllowedIPs) == 0 {
		return fmt.Errorf("MCP_ALLOWED_IPS cannot be empty when IP authentication is enabled")
	}

	if config.MCPOIDCEnabled {
		if config.MCPOIDCIssuer == "" {
			return fmt.Errorf("MCP_OIDC_ISSUER is required when OIDC authentication is enabled")
		}
		parsed, err := url.Parse(config.MCPOIDCIssuer)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("MCP_OIDC_ISSUER must be a valid URL")
		}
		if config.MCPOIDCAudience == "" {
			return fmt.Errorf("MCP_OIDC_AUDIENCE is required when OIDC authentication is enabled")
		}
	}

	return nil
}
