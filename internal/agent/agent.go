package agent

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/travis-burmaster/bmasterai/internal/monitor"
)

// ExecuteFunc performs one unit of work and returns its textual output.
type ExecuteFunc func(ctx context.Context, task Task) (string, error)

// Task is one assignment handed to an agent.
type Task struct {
	Name  string
	Input string
}

// Result captures the outcome of a single task execution.
type Result struct {
	AgentID  string
	Task     string
	Output   string
	Err      error
	Duration time.Duration
}

// Agent is a named unit of work execution wired into the monitor event log.
type Agent struct {
	id      string
	name    string
	execute ExecuteFunc
	events  *monitor.Logger
	logger  *log.Logger
}

// New creates an agent. events may be nil when event logging is not needed.
func New(id, name string, execute ExecuteFunc, events *monitor.Logger) (*Agent, error) {
	if id == "" {
		return nil, fmt.Errorf("agent id is required")
	}
	if execute == nil {
		return nil, fmt.Errorf("execute function is required for agent %s", id)
	}
	if name == "" {
		name = id
	}

	return &Agent{
		id:      id,
		name:    name,
		execute: execute,
		events:  events,
		logger:  log.New(os.Stdout, "[Agent] ", log.LstdFlags),
	}, nil
}

// ID returns the agent identifier.
func (a *Agent) ID() string {
	return a.id
}

// Name returns the human-readable agent name.
func (a *Agent) Name() string {
	return a.name
}

// Start records the agent_start event.
func (a *Agent) Start() {
	a.logger.Printf("agent %s (%s) starting", a.id, a.name)
	a.logEvent(monitor.EventAgentStart, monitor.LevelInfo, "agent started", nil)
}

// Stop records the agent_stop event.
func (a *Agent) Stop() {
	a.logger.Printf("agent %s stopping", a.id)
	a.logEvent(monitor.EventAgentStop, monitor.LevelInfo, "agent stopped", nil)
}

// Run executes one task, recording start, outcome and duration in the
// monitor store and event log.
func (a *Agent) Run(ctx context.Context, task Task) Result {
	monitor.RecordInvocation(monitor.ModeAgent)

	a.logEvent(monitor.EventTaskStart, monitor.LevelInfo, "task started", map[string]interface{}{
		"task": task.Name,
	})

	start := time.Now()
	output, err := a.execute(ctx, task)
	duration := time.Since(start)

	monitor.RecordTaskOutcome(a.id, task.Name, err == nil, duration)

	if err != nil {
		a.logger.Printf("agent %s task %s failed after %s: %v", a.id, task.Name, duration, err)
		a.logEvent(monitor.EventTaskError, monitor.LevelError, err.Error(), map[string]interface{}{
			"task":        task.Name,
			"duration_ms": duration.Milliseconds(),
		})
		return Result{
			AgentID:  a.id,
			Task:     task.Name,
			Err:      fmt.Errorf("agent %s task %s: %w", a.id, task.Name, err),
			Duration: duration,
		}
	}

	a.logEvent(monitor.EventTaskComplete, monitor.LevelInfo, "task completed", map[string]interface{}{
		"task":        task.Name,
		"duration_ms": duration.Milliseconds(),
	})

	return Result{
		AgentID:  a.id,
		Task:     task.Name,
		Output:   output,
		Duration: duration,
	}
}

func (a *Agent) logEvent(eventType monitor.EventType, level monitor.Level, message string, metadata map[string]interface{}) {
	if a.events == nil {
		return
	}
	ev := monitor.NewEvent(a.id, eventType, level, message).WithMetadata(metadata)
	if err := a.events.LogEvent(ev); err != nil {
		a.logger.Printf("failed to log %s event for agent %s: %v", eventType, a.id, err)
	}
}
