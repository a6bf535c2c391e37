package mcpserver

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/travis-burmaster/bmasterai/internal/monitor"
)

// queryRequest is the body of POST /query.
type queryRequest struct {
	Query string `json:"query"`
}

// queryResponse is the body returned by POST /query.
type queryResponse struct {
	Answer  string       `json:"answer"`
	Sources []sourceInfo `json:"sources,omitempty"`
}

type sourceInfo struct {
	Title string  `json:"title"`
	Score float32 `json:"score"`
}

// commandRequest is the body of POST /command.
type commandRequest struct {
	Command string `json:"command"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	answer, sources, err := s.querier(r.Context(), req.Query)
	if err != nil {
		s.logger.Printf("query failed: %v", err)
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	resp := queryResponse{Answer: answer}
	for _, src := range sources {
		resp.Sources = append(resp.Sources, sourceInfo{Title: src.Document.Title, Score: src.Score})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	switch strings.ToLower(strings.TrimSpace(req.Command)) {
	case "stats":
		writeJSON(w, http.StatusOK, map[string]any{"invocations": monitor.GetStats()})
	case "ping":
		writeJSON(w, http.StatusOK, map[string]string{"result": "pong"})
	default:
		writeError(w, http.StatusBadRequest, "unknown command: supported commands are stats, ping")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
