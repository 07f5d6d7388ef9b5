package middleware

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/xraph/netqueue/task"
)

const meterName = "github.com/xraph/netqueue"

// Metrics records per-run metrics on the global MeterProvider.
//
// Instruments:
//   - netqueue.task.duration (Float64Histogram, seconds)
//   - netqueue.task.runs (Int64Counter)
//
// Both carry queue, task_name and status ("ok", "error" or "cancelled").
func Metrics() Middleware {
	return MetricsWithMeter(otel.Meter(meterName))
}

// MetricsWithMeter is Metrics with an explicit meter.
func MetricsWithMeter(meter metric.Meter) Middleware {
	// The API hands back noop instruments on error.
	duration, _ := meter.Float64Histogram(
		"netqueue.task.duration",
		metric.WithDescription("Duration of task runs in seconds"),
		metric.WithUnit("s"),
	)
	runs, _ := meter.Int64Counter(
		"netqueue.task.runs",
		metric.WithDescription("Total number of task runs"),
		metric.WithUnit("{run}"),
	)

	return func(ctx context.Context, queue string, t task.Task, next Handler) error {
		start := time.Now()
		err := next(ctx)
		elapsed := time.Since(start).Seconds()

		status := "ok"
		switch {
		case err == nil:
		case errors.Is(err, context.Canceled):
			status = "cancelled"
		default:
			status = "error"
		}

		attrs := metric.WithAttributes(
			attribute.String("queue", queue),
			attribute.String("task_name", t.Name()),
			attribute.String("status", status),
		)
		duration.Record(ctx, elapsed, attrs)
		runs.Add(ctx, 1, attrs)

		return err
	}
}
