package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustAgent(t *testing.T, id string, execute ExecuteFunc) *Agent {
	t.Helper()
	a, err := New(id, id, execute, nil)
	require.NoError(t, err)
	return a
}

func TestRunSequential_ChainsOutputs(t *testing.T) {
	setupMonitor(t)

	upper := mustAgent(t, "upper", func(ctx context.Context, task Task) (string, error) {
		return strings.ToUpper(task.Input), nil
	})
	wrap := mustAgent(t, "wrap", func(ctx context.Context, task Task) (string, error) {
		return "<" + task.Input + ">", nil
	})

	c := NewCoordinator(0)
	results, err := c.RunSequential(context.Background(), []Assignment{
		{Agent: upper, Task: Task{Name: "upcase", Input: "hello"}},
		{Agent: wrap, Task: Task{Name: "wrap"}},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "HELLO", results[0].Output)
	assert.Equal(t, "<HELLO>", results[1].Output)
}

func TestRunSequential_ExplicitInputWins(t *testing.T) {
	setupMonitor(t)

	echo := mustAgent(t, "echo", func(ctx context.Context, task Task) (string, error) {
		return task.Input, nil
	})

	c := NewCoordinator(1)
	results, err := c.RunSequential(context.Background(), []Assignment{
		{Agent: echo, Task: Task{Name: "first", Input: "a"}},
		{Agent: echo, Task: Task{Name: "second", Input: "b"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "b", results[1].Output)
}

func TestRunSequential_StopsOnError(t *testing.T) {
	setupMonitor(t)

	ok := mustAgent(t, "ok", func(ctx context.Context, task Task) (string, error) {
		return "fine", nil
	})
	fail := mustAgent(t, "fail", func(ctx context.Context, task Task) (string, error) {
		return "", fmt.Errorf("boom")
	})

	var thirdRan atomic.Bool
	never := mustAgent(t, "never", func(ctx context.Context, task Task) (string, error) {
		thirdRan.Store(true)
		return "", nil
	})

	c := NewCoordinator(1)
	results, err := c.RunSequential(context.Background(), []Assignment{
		{Agent: ok, Task: Task{Name: "step-1"}},
		{Agent: fail, Task: Task{Name: "step-2"}},
		{Agent: never, Task: Task{Name: "step-3"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stopped at step 1")
	assert.Len(t, results, 2)
	assert.False(t, thirdRan.Load())
}

func TestRunSequential_NilAgent(t *testing.T) {
	setupMonitor(t)

	c := NewCoordinator(1)
	_, err := c.RunSequential(context.Background(), []Assignment{{Task: Task{Name: "orphan"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no agent")
}

func TestRunParallel_PreservesOrder(t *testing.T) {
	setupMonitor(t)

	echo := mustAgent(t, "echo", func(ctx context.Context, task Task) (string, error) {
		return task.Input, nil
	})

	assignments := make([]Assignment, 5)
	for i := range assignments {
		assignments[i] = Assignment{
			Agent: echo,
			Task:  Task{Name: fmt.Sprintf("task-%d", i), Input: fmt.Sprintf("value-%d", i)},
		}
	}

	c := NewCoordinator(2)
	results, err := c.RunParallel(context.Background(), assignments)
	require.NoError(t, err)
	require.Len(t, results, 5)
	for i, result := range results {
		assert.Equal(t, fmt.Sprintf("task-%d", i), result.Task)
		assert.Equal(t, fmt.Sprintf("value-%d", i), result.Output)
	}
}

func TestRunParallel_BoundsConcurrency(t *testing.T) {
	setupMonitor(t)

	var mu sync.Mutex
	inFlight, peak := 0, 0
	gate := make(chan struct{})

	slow := mustAgent(t, "slow", func(ctx context.Context, task Task) (string, error) {
		mu.Lock()
		inFlight++
		if inFlight > peak {
			peak = inFlight
		}
		mu.Unlock()

		<-gate

		mu.Lock()
		inFlight--
		mu.Unlock()
		return "done", nil
	})

	assignments := make([]Assignment, 6)
	for i := range assignments {
		assignments[i] = Assignment{Agent: slow, Task: Task{Name: fmt.Sprintf("task-%d", i)}}
	}

	c := NewCoordinator(2)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.RunParallel(context.Background(), assignments)
	}()

	close(gate)
	<-done

	mu.Lock()
	defer mu.Unlock()
	assert.LessOrEqual(t, peak, 2)
}

func TestRunParallel_ReportsFailures(t *testing.T) {
	setupMonitor(t)

	flaky := mustAgent(t, "flaky", func(ctx context.Context, task Task) (string, error) {
		if strings.HasSuffix(task.Name, "bad") {
			return "", fmt.Errorf("refused")
		}
		return "ok", nil
	})

	c := NewCoordinator(3)
	results, err := c.RunParallel(context.Background(), []Assignment{
		{Agent: flaky, Task: Task{Name: "good"}},
		{Agent: flaky, Task: Task{Name: "bad"}},
		{Agent: flaky, Task: Task{Name: "also-good"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 failure(s)")
	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)
}
