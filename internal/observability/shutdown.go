package observability

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const shutdownTimeout = 5 * time.Second

// ShutdownFunc flushes and tears down telemetry exporters.
type ShutdownFunc func(context.Context) error

type shutdownStep struct {
	name string
	fn   func(context.Context) error
}

// NewShutdownFunc combines tracer and meter teardown into one call. Every
// step runs even when an earlier one fails; the errors are joined.
func NewShutdownFunc(tp *sdktrace.TracerProvider, mp *sdkmetric.MeterProvider) ShutdownFunc {
	var steps []shutdownStep
	if tp != nil {
		steps = append(steps, shutdownStep{name: "tracer provider", fn: tp.Shutdown})
	}
	if mp != nil {
		steps = append(steps, shutdownStep{name: "meter provider", fn: mp.Shutdown})
	}
	return runShutdownSteps(steps)
}

func runShutdownSteps(steps []shutdownStep) ShutdownFunc {
	return func(ctx context.Context) error {
		if ctx == nil {
			ctx = context.Background()
		}
		if _, hasDeadline := ctx.Deadline(); !hasDeadline {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()
		}

		var errs []error
		for _, step := range steps {
			if err := step.fn(ctx); err != nil {
				log.Printf("observability: %s shutdown failed: %v", step.name, err)
				errs = append(errs, fmt.Errorf("%s: %w", step.name, err))
			}
		}
		return errors.Join(errs...)
	}
}
