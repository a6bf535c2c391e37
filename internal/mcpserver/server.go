// Package mcpserver exposes the toolkit over the Model Context Protocol.
// The streamable MCP transport is served at /mcp; a minimal JSON fallback
// (/query, /command, /health) remains for clients without MCP support.
package mcpserver

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/travis-burmaster/bmasterai/internal/config"
	"github.com/travis-burmaster/bmasterai/internal/monitor"
)

// Server hosts the MCP SDK server and the fallback HTTP API.
type Server struct {
	cfg        *config.Config
	sdkServer  *mcp.Server
	httpServer *http.Server
	querier    RagQuerier
	logger     *log.Logger

	ipAuth   *IPAuthMiddleware
	oidcAuth *OIDCAuthMiddleware
}

// New creates the server and registers its tools.
func New(cfg *config.Config, querier RagQuerier) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	s := &Server{
		cfg:     cfg,
		querier: querier,
		logger:  log.New(os.Stdout, "[MCPServer] ", log.LstdFlags),
	}

	impl := &mcp.Implementation{Name: "bmasterai-mcp-server", Version: "1.0.0"}
	s.sdkServer = mcp.NewServer(impl, nil)
	s.sdkServer.AddTool(ragSearchTool(), ragSearchHandler(querier))
	s.sdkServer.AddTool(monitorStatsTool(), monitorStatsHandler())

	if cfg.MCPIPAuthEnabled {
		ipAuth, err := NewIPAuthMiddleware(cfg.MCPAllowedIPs, true)
		if err != nil {
			return nil, fmt.Errorf("IP auth setup failed: %w", err)
		}
		s.ipAuth = ipAuth
	}

	if cfg.MCPOIDCEnabled {
		oidcAuth, err := NewOIDCAuthMiddleware(context.Background(), cfg.MCPOIDCIssuer, cfg.MCPOIDCAudience, true)
		if err != nil {
			return nil, fmt.Errorf("OIDC auth setup failed: %w", err)
		}
		s.oidcAuth = oidcAuth
	}

	return s, nil
}

// Handler builds the full HTTP handler chain, including auth middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mcpHandler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server { return s.sdkServer }, nil)
	mux.Handle("/mcp", mcpHandler)

	mux.HandleFunc("/query", s.handleQuery)
	mux.HandleFunc("/command", s.handleCommand)
	mux.HandleFunc("/health", s.handleHealth)

	var handler http.Handler = mux
	if s.oidcAuth != nil {
		handler = s.oidcAuth.Middleware(handler)
	}
	if s.ipAuth != nil {
		handler = s.ipAuth.Middleware(handler)
	}
	return handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	monitor.RecordInvocation(monitor.ModeMCP)

	addr := fmt.Sprintf("%s:%d", s.cfg.MCPServerHost, s.cfg.MCPServerPort)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.MCPServerReadTimeout,
		WriteTimeout: s.cfg.MCPServerWriteTimeout,
		IdleTimeout:  s.cfg.MCPServerIdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Printf("listening on %s", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("MCP server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	s.logger.Printf("server stopped")
	return nil
}
