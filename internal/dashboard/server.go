// Package dashboard serves a small monitoring UI: a JSON stats API, a live
// SSE event feed and a single inline HTML page rendering both.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/travis-burmaster/bmasterai/internal/monitor"
)

// ServerConfig holds the dashboard server configuration.
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DefaultServerConfig returns the default dashboard configuration.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Host:            "localhost",
		Port:            8081,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    0, // SSE responses must not be cut off by a write deadline
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}

// StatsResponse is the /api/stats payload.
type StatsResponse struct {
	Invocations map[monitor.Mode]int64 `json:"invocations"`
	Agents      []AgentSummary         `json:"agents"`
	Subscribers int                    `json:"subscribers"`
	GeneratedAt time.Time              `json:"generated_at"`
}

// AgentSummary is one row of per-agent task statistics.
type AgentSummary struct {
	AgentID       string  `json:"agent_id"`
	TaskCount     int64   `json:"task_count"`
	ErrorCount    int64   `json:"error_count"`
	AvgDurationMS float64 `json:"avg_duration_ms"`
}

// Server is the dashboard HTTP server.
type Server struct {
	config     *ServerConfig
	httpServer *http.Server
	feed       *Feed
	events     *monitor.Logger
	logger     *log.Logger
}

// NewServer creates a dashboard server. When events is non-nil its stream is
// forwarded to the live feed.
func NewServer(config *ServerConfig, events *monitor.Logger, logger *log.Logger) *Server {
	if config == nil {
		config = DefaultServerConfig()
	}
	if logger == nil {
		logger = log.New(os.Stdout, "[Dashboard] ", log.LstdFlags)
	}

	s := &Server{
		config: config,
		feed:   NewFeed(FeedConfig{}, logger),
		events: events,
		logger: logger,
	}

	if events != nil {
		events.AddSink(s.feed.Publish)
	}
	return s
}

// Handler builds the dashboard route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/events", s.handleEvents)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Start runs the server until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.feed.Start(ctx)
	defer s.feed.Stop()

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("dashboard listening on http://%s", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("dashboard server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("dashboard shutdown failed: %w", err)
	}
	s.logger.Printf("dashboard stopped")
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexPage))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	resp := StatsResponse{
		Invocations: monitor.GetStats(),
		Agents:      []AgentSummary{},
		Subscribers: s.feed.SubscriberCount(),
		GeneratedAt: time.Now().UTC(),
	}
	if resp.Invocations == nil {
		resp.Invocations = map[monitor.Mode]int64{}
	}

	if store := monitor.GetStore(); store != nil {
		agentStats, err := store.GetAgentStats()
		if err != nil {
			s.logger.Printf("failed to load agent stats: %v", err)
		}
		for _, st := range agentStats {
			resp.Agents = append(resp.Agents, AgentSummary{
				AgentID:       st.AgentID,
				TaskCount:     st.TaskCount,
				ErrorCount:    st.ErrorCount,
				AvgDurationMS: st.AvgDurationMS,
			})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Printf("failed to encode stats response: %v", err)
	}
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	var levels []monitor.Level
	if raw := r.URL.Query().Get("level"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			levels = append(levels, monitor.Level(strings.TrimSpace(part)))
		}
	}

	subscriberID := uuid.NewString()
	sub, err := s.feed.Subscribe(subscriberID, levels)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	defer s.feed.Unsubscribe(subscriberID)

	_, _ = fmt.Fprintf(w, "event: connected\ndata: {\"subscriber_id\":%q}\n\n", subscriberID)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-sub.Done:
			return
		case message, ok := <-sub.Messages:
			if !ok {
				return
			}
			_, _ = w.Write(message)
			flusher.Flush()
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = fmt.Fprintf(w, `{"status":"healthy","time":%q}`, time.Now().UTC().Format(time.RFC3339))
}
