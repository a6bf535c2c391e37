package monitor

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger writes structured agent events as JSON lines to a file and mirrors
// a short form to the console. Safe for concurrent use.
type Logger struct {
	mu      sync.Mutex
	file    *os.File
	console *log.Logger
	sinks   []func(Event)
}

// NewLogger opens (or creates) the JSONL event log at path. An empty path
// defaults to ~/.bmasterai/events.jsonl.
func NewLogger(path string) (*Logger, error) {
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(homeDir, ".bmasterai", "events.jsonl")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log: %w", err)
	}

	return &Logger{
		file:    file,
		console: log.New(os.Stdout, "[monitor] ", log.LstdFlags),
	}, nil
}

// AddSink registers a callback invoked for every logged event. Used by the
// dashboard SSE feed and the alert evaluator.
func (l *Logger) AddSink(sink func(Event)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sinks = append(l.sinks, sink)
}

// LogEvent appends the event to the JSONL file and notifies sinks.
func (l *Logger) LogEvent(ev Event) error {
	if ev.ID == "" {
		ev = NewEvent(ev.AgentID, ev.Type, ev.Level, ev.Message).WithMetadata(ev.Metadata)
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	l.mu.Lock()
	_, writeErr := l.file.Write(append(data, '\n'))
	sinks := make([]func(Event), len(l.sinks))
	copy(sinks, l.sinks)
	l.mu.Unlock()

	if writeErr != nil {
		return fmt.Errorf("failed to write event: %w", writeErr)
	}

	l.console.Printf("agent=%s type=%s level=%s msg=%q", ev.AgentID, ev.Type, ev.Level, ev.Message)

	for _, sink := range sinks {
		sink(ev)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// AgentLogger scopes a Logger to one agent ID.
type AgentLogger struct {
	logger  *Logger
	agentID string
}

// ForAgent returns a logger that stamps every event with agentID.
func (l *Logger) ForAgent(agentID string) *AgentLogger {
	return &AgentLogger{logger: l, agentID: agentID}
}

// Log records an event of the given type at info level.
func (a *AgentLogger) Log(eventType EventType, message string, metadata map[string]interface{}) {
	ev := NewEvent(a.agentID, eventType, LevelInfo, message).WithMetadata(metadata)
	if err := a.logger.LogEvent(ev); err != nil {
		log.Printf("monitor: failed to log event for agent %s: %v", a.agentID, err)
	}
}

// Error records a task_error event at error level.
func (a *AgentLogger) Error(message string, metadata map[string]interface{}) {
	ev := NewEvent(a.agentID, EventTaskError, LevelError, message).WithMetadata(metadata)
	if err := a.logger.LogEvent(ev); err != nil {
		log.Printf("monitor: failed to log error event for agent %s: %v", a.agentID, err)
	}
}
