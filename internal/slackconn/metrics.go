package slackconn

import (
	"context"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	slackMetricsOnce      sync.Once
	slackRequestCounter   metric.Int64Counter
	slackErrorCounter     metric.Int64Counter
	slackLatencyHistogram metric.Float64Histogram
)

func initSlackMetrics() {
	slackMetricsOnce.Do(func() {
		meter := otel.Meter("bmasterai/slackconn")

		var err error
		slackRequestCounter, err = meter.Int64Counter(
			"bmasterai.slack.requests.total",
			metric.WithDescription("Total Slack bot questions handled"),
		)
		if err != nil {
			log.Printf("observability: failed to create slack request counter: %v", err)
		}

		slackErrorCounter, err = meter.Int64Counter(
			"bmasterai.slack.errors.total",
			metric.WithDescription("Total Slack bot answer failures"),
		)
		if err != nil {
			log.Printf("observability: failed to create slack error counter: %v", err)
		}

		slackLatencyHistogram, err = meter.Float64Histogram(
			"bmasterai.slack.response_time",
			metric.WithDescription("Slack bot answer latency (ms)"),
			metric.WithUnit("ms"),
		)
		if err != nil {
			log.Printf("observability: failed to create slack latency histogram: %v", err)
		}
	})
}

func recordSlackMetrics(ctx context.Context, duration time.Duration, hadError bool) {
	initSlackMetrics()
	if slackRequestCounter != nil {
		slackRequestCounter.Add(ctx, 1)
	}
	if slackLatencyHistogram != nil {
		slackLatencyHistogram.Record(ctx, float64(duration.Milliseconds()))
	}
	if hadError && slackErrorCounter != nil {
		slackErrorCounter.Add(ctx, 1)
	}
}
