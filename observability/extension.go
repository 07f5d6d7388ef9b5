package observability

import (
	"context"
	"time"

	gu "github.com/xraph/go-utils/metrics"

	"github.com/xraph/netqueue/ext"
	"github.com/xraph/netqueue/task"
)

// Compile-time interface checks.
var (
	_ ext.Extension       = (*MetricsExtension)(nil)
	_ ext.TaskEnqueued    = (*MetricsExtension)(nil)
	_ ext.TaskStarted     = (*MetricsExtension)(nil)
	_ ext.TaskCompleted   = (*MetricsExtension)(nil)
	_ ext.TaskFailed      = (*MetricsExtension)(nil)
	_ ext.TaskCancelled   = (*MetricsExtension)(nil)
	_ ext.ActivityStarted = (*MetricsExtension)(nil)
	_ ext.ActivityStopped = (*MetricsExtension)(nil)
)

// MetricsExtension counts queue lifecycle events.
type MetricsExtension struct {
	TaskEnqueued    gu.Counter
	TaskStarted     gu.Counter
	TaskCompleted   gu.Counter
	TaskFailed      gu.Counter
	TaskCancelled   gu.Counter
	ActivityStarted gu.Counter
	ActivityStopped gu.Counter
}

// NewMetricsExtension creates a MetricsExtension on a default collector.
func NewMetricsExtension() *MetricsExtension {
	return NewMetricsExtensionWithFactory(gu.NewMetricsCollector("netqueue/observability"))
}

// NewMetricsExtensionWithFactory creates a MetricsExtension on factory.
func NewMetricsExtensionWithFactory(factory gu.MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		TaskEnqueued:    factory.Counter("netqueue.task.enqueued"),
		TaskStarted:     factory.Counter("netqueue.task.started"),
		TaskCompleted:   factory.Counter("netqueue.task.completed"),
		TaskFailed:      factory.Counter("netqueue.task.failed"),
		TaskCancelled:   factory.Counter("netqueue.task.cancelled"),
		ActivityStarted: factory.Counter("netqueue.activity.started"),
		ActivityStopped: factory.Counter("netqueue.activity.stopped"),
	}
}

// Name implements ext.Extension.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnTaskEnqueued implements ext.TaskEnqueued.
func (m *MetricsExtension) OnTaskEnqueued(_ context.Context, _ string, _ task.Task) error {
	m.TaskEnqueued.Inc()
	return nil
}

// OnTaskStarted implements ext.TaskStarted.
func (m *MetricsExtension) OnTaskStarted(_ context.Context, _ string, _ task.Task) error {
	m.TaskStarted.Inc()
	return nil
}

// OnTaskCompleted implements ext.TaskCompleted.
func (m *MetricsExtension) OnTaskCompleted(_ context.Context, _ string, _ task.Task, _ time.Duration) error {
	m.TaskCompleted.Inc()
	return nil
}

// OnTaskFailed implements ext.TaskFailed.
func (m *MetricsExtension) OnTaskFailed(_ context.Context, _ string, _ task.Task, _ error) error {
	m.TaskFailed.Inc()
	return nil
}

// OnTaskCancelled implements ext.TaskCancelled.
func (m *MetricsExtension) OnTaskCancelled(_ context.Context, _ string, _ task.Task, _ bool) error {
	m.TaskCancelled.Inc()
	return nil
}

// OnActivityStarted implements ext.ActivityStarted.
func (m *MetricsExtension) OnActivityStarted(_ context.Context, _ string) error {
	m.ActivityStarted.Inc()
	return nil
}

// OnActivityStopped implements ext.ActivityStopped.
func (m *MetricsExtension) OnActivityStopped(_ context.Context, _ string) error {
	m.ActivityStopped.Inc()
	return nil
}
