package agent

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 4

// Assignment pairs an agent with the task it should execute.
type Assignment struct {
	Agent *Agent
	Task  Task
}

// Coordinator runs groups of assignments either in order or concurrently.
type Coordinator struct {
	concurrency int
	logger      *log.Logger
}

// NewCoordinator creates a coordinator. concurrency bounds parallel runs;
// values below 1 fall back to the default.
func NewCoordinator(concurrency int) *Coordinator {
	if concurrency < 1 {
		concurrency = defaultConcurrency
	}
	return &Coordinator{
		concurrency: concurrency,
		logger:      log.New(os.Stdout, "[Coordinator] ", log.LstdFlags),
	}
}

// RunSequential executes assignments in order, feeding each agent's output
// into the next task's input. Execution stops at the first failure; results
// collected so far are returned alongside the error.
func (c *Coordinator) RunSequential(ctx context.Context, assignments []Assignment) ([]Result, error) {
	results := make([]Result, 0, len(assignments))

	carry := ""
	for i, assignment := range assignments {
		if assignment.Agent == nil {
			return results, fmt.Errorf("assignment %d has no agent", i)
		}

		task := assignment.Task
		if carry != "" && task.Input == "" {
			task.Input = carry
		}

		result := assignment.Agent.Run(ctx, task)
		results = append(results, result)
		if result.Err != nil {
			return results, fmt.Errorf("sequential run stopped at step %d: %w", i, result.Err)
		}
		carry = result.Output
	}

	c.logger.Printf("sequential run completed: %d step(s)", len(results))
	return results, nil
}

// RunParallel executes all assignments concurrently with bounded
// concurrency. Every assignment runs to completion even when siblings fail;
// per-assignment failures are reported in the Result and summarized in the
// returned error. Results keep assignment order.
func (c *Coordinator) RunParallel(ctx context.Context, assignments []Assignment) ([]Result, error) {
	for i, assignment := range assignments {
		if assignment.Agent == nil {
			return nil, fmt.Errorf("assignment %d has no agent", i)
		}
	}

	results := make([]Result, len(assignments))
	var mu sync.Mutex
	failures := 0

	eg, ctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, c.concurrency)

	for i, assignment := range assignments {
		i, assignment := i, assignment
		eg.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			result := assignment.Agent.Run(ctx, assignment.Task)
			mu.Lock()
			results[i] = result
			if result.Err != nil {
				failures++
			}
			mu.Unlock()
			return nil
		})
	}

	_ = eg.Wait() // errors are tracked inside results

	c.logger.Printf("parallel run completed: %d task(s), %d failure(s)", len(assignments), failures)
	if failures > 0 {
		return results, fmt.Errorf("parallel run finished with %d failure(s)", failures)
	}
	return results, nil
}
