package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/xraph/netqueue/ext"
	"github.com/xraph/netqueue/task"
)

const meterName = "github.com/xraph/netqueue/observability"

var (
	_ ext.TaskEnqueued  = (*Gauges)(nil)
	_ ext.TaskStarted   = (*Gauges)(nil)
	_ ext.TaskCompleted = (*Gauges)(nil)
	_ ext.TaskFailed    = (*Gauges)(nil)
	_ ext.TaskCancelled = (*Gauges)(nil)
)

// Gauges tracks how many tasks each queue holds, as OTel up-down
// counters with a queue attribute:
//   - netqueue.tasks.pending
//   - netqueue.tasks.active
type Gauges struct {
	pending metric.Int64UpDownCounter
	active  metric.Int64UpDownCounter
}

// NewGauges creates Gauges on the global MeterProvider.
func NewGauges() *Gauges {
	return NewGaugesWithMeter(otel.Meter(meterName))
}

// NewGaugesWithMeter creates Gauges on meter.
func NewGaugesWithMeter(meter metric.Meter) *Gauges {
	// The API hands back noop instruments on error.
	pending, _ := meter.Int64UpDownCounter(
		"netqueue.tasks.pending",
		metric.WithDescription("Tasks waiting for a concurrency slot"),
		metric.WithUnit("{task}"),
	)
	active, _ := meter.Int64UpDownCounter(
		"netqueue.tasks.active",
		metric.WithDescription("Tasks currently running"),
		metric.WithUnit("{task}"),
	)
	return &Gauges{pending: pending, active: active}
}

// Name implements ext.Extension.
func (g *Gauges) Name() string { return "observability-gauges" }

// OnTaskEnqueued implements ext.TaskEnqueued.
func (g *Gauges) OnTaskEnqueued(ctx context.Context, queue string, _ task.Task) error {
	g.pending.Add(ctx, 1, queueAttr(queue))
	return nil
}

// OnTaskStarted implements ext.TaskStarted.
func (g *Gauges) OnTaskStarted(ctx context.Context, queue string, _ task.Task) error {
	g.pending.Add(ctx, -1, queueAttr(queue))
	g.active.Add(ctx, 1, queueAttr(queue))
	return nil
}

// OnTaskCompleted implements ext.TaskCompleted.
func (g *Gauges) OnTaskCompleted(ctx context.Context, queue string, _ task.Task, _ time.Duration) error {
	g.active.Add(ctx, -1, queueAttr(queue))
	return nil
}

// OnTaskFailed implements ext.TaskFailed.
func (g *Gauges) OnTaskFailed(ctx context.Context, queue string, _ task.Task, _ error) error {
	g.active.Add(ctx, -1, queueAttr(queue))
	return nil
}

// OnTaskCancelled implements ext.TaskCancelled.
func (g *Gauges) OnTaskCancelled(ctx context.Context, queue string, _ task.Task, started bool) error {
	if started {
		g.active.Add(ctx, -1, queueAttr(queue))
	} else {
		g.pending.Add(ctx, -1, queueAttr(queue))
	}
	return nil
}

func queueAttr(queue string) metric.AddOption {
	return metric.WithAttributes(attribute.String("queue", queue))
}
