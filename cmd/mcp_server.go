package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	appconfig "github.com/travis-burmaster/bmasterai/internal/config"
	"github.com/travis-burmaster/bmasterai/internal/mcpserver"
	"github.com/travis-burmaster/bmasterai/internal/qdrantstore"
)

var mcpServerCmd = &cobra.Command{
	Use:   "mcp-server",
	Short: "Run the MCP server exposing RAG search and monitoring tools",
	Long: `
Start an HTTP server that speaks the Model Context Protocol on /mcp
and offers a plain JSON fallback on /query and /command. MCP clients
get two tools: rag_search over the Qdrant collection and monitor_stats
reporting toolkit usage.

Optional protections: IP allow-listing (MCP_IP_AUTH_ENABLED plus
MCP_ALLOWED_IPS) and OIDC bearer authentication (MCP_OIDC_ENABLED
plus issuer and audience).
`,
	RunE: runMCPServer,
}

func runMCPServer(cmd *cobra.Command, args []string) error {
	cfg, err := appconfig.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry := initObservability(cfg)
	defer func() { _ = shutdownTelemetry(context.Background()) }()

	service, err := newQueryService(ctx, cfg)
	if err != nil {
		return err
	}

	events, err := newEventLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = events.Close() }()

	logger := log.New(os.Stdout, "[MCPServer] ", log.LstdFlags)
	if _, err := startAlertEvaluator(ctx, cfg, events, logger); err != nil {
		return err
	}

	querier := func(ctx context.Context, question string) (string, []qdrantstore.SearchResult, error) {
		result, err := service.Query(ctx, question)
		if err != nil {
			return "", nil, err
		}
		return result.Answer, result.Sources, nil
	}

	server, err := mcpserver.New(cfg, querier)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("MCP server stopped with error: %w", err)
	}
	return nil
}
