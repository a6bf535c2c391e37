package monitor

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_WritesJSONLines(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "events.jsonl")
	logger, err := NewLogger(logPath)
	require.NoError(t, err)
	defer logger.Close()

	ev := NewEvent("agent-1", EventTaskStart, LevelInfo, "starting analysis")
	require.NoError(t, logger.LogEvent(ev))

	ev2 := NewEvent("agent-1", EventLLMCall, LevelInfo, "model invoked").WithMetadata(map[string]interface{}{
		"model":         "claude-3-5-sonnet",
		"input_tokens":  float64(120),
		"output_tokens": float64(45),
	})
	require.NoError(t, logger.LogEvent(ev2))

	file, err := os.Open(logPath)
	require.NoError(t, err)
	defer file.Close()

	var events []Event
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var decoded Event
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &decoded))
		events = append(events, decoded)
	}
	require.NoError(t, scanner.Err())

	require.Len(t, events, 2)
	assert.Equal(t, "agent-1", events[0].AgentID)
	assert.Equal(t, EventTaskStart, events[0].Type)
	assert.NotEmpty(t, events[0].ID)
	assert.False(t, events[0].Timestamp.IsZero())
	assert.Equal(t, "claude-3-5-sonnet", events[1].Metadata["model"])
}

func TestLogger_SinksReceiveEvents(t *testing.T) {
	logger, err := NewLogger(filepath.Join(t.TempDir(), "events.jsonl"))
	require.NoError(t, err)
	defer logger.Close()

	var received []Event
	logger.AddSink(func(ev Event) { received = append(received, ev) })

	require.NoError(t, logger.LogEvent(NewEvent("a", EventToolUse, LevelInfo, "tool called")))
	require.NoError(t, logger.LogEvent(NewEvent("b", EventTaskError, LevelError, "boom")))

	require.Len(t, received, 2)
	assert.Equal(t, EventToolUse, received[0].Type)
	assert.Equal(t, "b", received[1].AgentID)
}

func TestAgentLogger_StampsAgentID(t *testing.T) {
	logger, err := NewLogger(filepath.Join(t.TempDir(), "events.jsonl"))
	require.NoError(t, err)
	defer logger.Close()

	var received []Event
	logger.AddSink(func(ev Event) { received = append(received, ev) })

	al := logger.ForAgent("scout")
	al.Log(EventAgentStart, "up", nil)
	al.Error("failed to fetch", map[string]interface{}{"url": "https://example.com"})

	require.Len(t, received, 2)
	assert.Equal(t, "scout", received[0].AgentID)
	assert.Equal(t, LevelError, received[1].Level)
	assert.Equal(t, EventTaskError, received[1].Type)
}

func TestLogger_FillsMissingIDAndTimestamp(t *testing.T) {
	logger, err := NewLogger(filepath.Join(t.TempDir(), "events.jsonl"))
	require.NoError(t, err)
	defer logger.Close()

	var got Event
	logger.AddSink(func(ev Event) { got = ev })

	require.NoError(t, logger.LogEvent(Event{AgentID: "x", Type: EventAgentStop, Level: LevelInfo, Message: "down"}))
	assert.NotEmpty(t, got.ID)
	assert.False(t, got.Timestamp.IsZero())
}
