package agent

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

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

func newEventRecorder(t *testing.T) (*monitor.Logger, func() []monitor.Event) {
	t.Helper()
	events, err := monitor.NewLogger(filepath.Join(t.TempDir(), "events.jsonl"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = events.Close() })

	var mu sync.Mutex
	var captured []monitor.Event
	events.AddSink(func(ev monitor.Event) {
		mu.Lock()
		captured = append(captured, ev)
		mu.Unlock()
	})

	return events, func() []monitor.Event {
		mu.Lock()
		defer mu.Unlock()
		out := make([]monitor.Event, len(captured))
		copy(out, captured)
		return out
	}
}

func TestNew_Validation(t *testing.T) {
	echo := func(ctx context.Context, task Task) (string, error) {
		return task.Input, nil
	}

	_, err := New("", "Worker", echo, nil)
	assert.Error(t, err)

	_, err = New("worker-1", "Worker", nil, nil)
	assert.Error(t, err)

	a, err := New("worker-1", "", echo, nil)
	require.NoError(t, err)
	assert.Equal(t, "worker-1", a.ID())
	assert.Equal(t, "worker-1", a.Name())
}

func TestAgentRun_Success(t *testing.T) {
	setupMonitor(t)
	events, captured := newEventRecorder(t)

	a, err := New("worker-1", "Worker", func(ctx context.Context, task Task) (string, error) {
		return "processed " + task.Input, nil
	}, events)
	require.NoError(t, err)

	result := a.Run(context.Background(), Task{Name: "summarize", Input: "report"})
	require.NoError(t, result.Err)
	assert.Equal(t, "worker-1", result.AgentID)
	assert.Equal(t, "summarize", result.Task)
	assert.Equal(t, "processed report", result.Output)

	stats := monitor.GetStats()
	assert.Equal(t, int64(1), stats[monitor.ModeAgent])

	evs := captured()
	require.Len(t, evs, 2)
	assert.Equal(t, monitor.EventTaskStart, evs[0].Type)
	assert.Equal(t, monitor.EventTaskComplete, evs[1].Type)
	assert.Equal(t, "summarize", evs[1].Metadata["task"])
}

func TestAgentRun_Failure(t *testing.T) {
	setupMonitor(t)
	events, captured := newEventRecorder(t)

	a, err := New("worker-1", "Worker", func(ctx context.Context, task Task) (string, error) {
		return "", fmt.Errorf("upstream timeout")
	}, events)
	require.NoError(t, err)

	result := a.Run(context.Background(), Task{Name: "fetch"})
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "agent worker-1 task fetch")
	assert.Contains(t, result.Err.Error(), "upstream timeout")

	evs := captured()
	require.Len(t, evs, 2)
	assert.Equal(t, monitor.EventTaskError, evs[1].Type)
	assert.Equal(t, monitor.LevelError, evs[1].Level)
}

func TestAgentStartStop(t *testing.T) {
	setupMonitor(t)
	events, captured := newEventRecorder(t)

	a, err := New("worker-1", "Worker", func(ctx context.Context, task Task) (string, error) {
		return "", nil
	}, events)
	require.NoError(t, err)

	a.Start()
	a.Stop()

	evs := captured()
	require.Len(t, evs, 2)
	assert.Equal(t, monitor.EventAgentStart, evs[0].Type)
	assert.Equal(t, monitor.EventAgentStop, evs[1].Type)
}
