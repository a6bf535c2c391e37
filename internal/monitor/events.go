package monitor

import (
	"time"

	"github.com/google/uuid"
)

// EventType classifies agent lifecycle and activity events.
type EventType string

const (
	EventAgentStart   EventType = "agent_start"
	EventAgentStop    EventType = "agent_stop"
	EventTaskStart    EventType = "task_start"
	EventTaskComplete EventType = "task_complete"
	EventTaskError    EventType = "task_error"
	EventToolUse      EventType = "tool_use"
	EventLLMCall      EventType = "llm_call"
	EventAlert        EventType = "alert"
)

// Level indicates event severity.
type Level string

const (
	LevelDebug    Level = "debug"
	LevelInfo     Level = "info"
	LevelWarning  Level = "warning"
	LevelError    Level = "error"
	LevelCritical Level = "critical"
)

// Event is a single structured monitoring record emitted by an agent or
// integration. Metadata carries adapter-specific details (model id, token
// counts, tool arguments) without constraining the schema.
type Event struct {
	ID        string                 `json:"id"`
	AgentID   string                 `json:"agent_id"`
	Type      EventType              `json:"type"`
	Level     Level                  `json:"level"`
	Message   string                 `json:"message"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// NewEvent constructs an Event with a fresh ID and current timestamp.
func NewEvent(agentID string, eventType EventType, level Level, message string) Event {
	return Event{
		ID:        uuid.NewString(),
		AgentID:   agentID,
		Type:      eventType,
		Level:     level,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// WithMetadata returns a copy of the event carrying the given metadata.
func (e Event) WithMetadata(md map[string]interface{}) Event {
	e.Metadata = md
	return e
}
