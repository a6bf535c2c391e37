package dashboard

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/travis-burmaster/bmasterai/internal/monitor"
)

func setupMonitor(t *testing.T) {
	t.Helper()
	store, err := monitor.NewStoreWithPath(filepath.Join(t.TempDir(), "metrics.db"))
	require.NoError(t, err)
	monitor.SetStoreForTesting(store)
	t.Cleanup(monitor.ResetForTesting)
}

func TestHandleIndex(t *testing.T) {
	setupMonitor(t)
	s := NewServer(nil, nil, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "BMasterAI Monitoring")

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleStats(t *testing.T) {
	setupMonitor(t)
	monitor.RecordInvocation(monitor.ModeChat)
	monitor.RecordInvocation(monitor.ModeChat)
	monitor.RecordTaskOutcome("agent-1", "summarize", true, 120*time.Millisecond)
	monitor.RecordTaskOutcome("agent-1", "summarize", false, 80*time.Millisecond)

	s := NewServer(nil, nil, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Invocations[monitor.ModeChat])
	require.Len(t, resp.Agents, 1)
	assert.Equal(t, "agent-1", resp.Agents[0].AgentID)
	assert.Equal(t, int64(2), resp.Agents[0].TaskCount)
	assert.Equal(t, int64(1), resp.Agents[0].ErrorCount)
}

func TestHandleStats_UninitializedStore(t *testing.T) {
	monitor.ResetForTesting()
	t.Cleanup(monitor.ResetForTesting)

	s := NewServer(nil, nil, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotNil(t, resp.Invocations)
	assert.Empty(t, resp.Agents)
}

func TestHandleHealth(t *testing.T) {
	setupMonitor(t)
	s := NewServer(nil, nil, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
}

func TestHandleEvents_StreamsMonitorEvents(t *testing.T) {
	setupMonitor(t)

	events, err := monitor.NewLogger(filepath.Join(t.TempDir(), "events.jsonl"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = events.Close() })

	s := NewServer(nil, events, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.feed.Start(ctx)
	t.Cleanup(s.feed.Stop)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: connected", strings.TrimSpace(line))

	// skip the connected data and blank line
	_, _ = reader.ReadString('\n')
	_, _ = reader.ReadString('\n')

	require.NoError(t, events.LogEvent(monitor.NewEvent("agent-1", monitor.EventLLMCall, monitor.LevelInfo, "called model")))

	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: llm_call", strings.TrimSpace(line))
	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, line, `"message":"called model"`)
}
