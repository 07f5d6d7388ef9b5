package audithook

import (
	"context"
	"log/slog"
	"time"

	"github.com/xraph/netqueue/ext"
	"github.com/xraph/netqueue/task"
)

var (
	_ ext.Extension     = (*Extension)(nil)
	_ ext.TaskEnqueued  = (*Extension)(nil)
	_ ext.TaskStarted   = (*Extension)(nil)
	_ ext.TaskCompleted = (*Extension)(nil)
	_ ext.TaskFailed    = (*Extension)(nil)
	_ ext.TaskCancelled = (*Extension)(nil)
	_ ext.Shutdown      = (*Extension)(nil)
)

// Recorder persists audit events. It matches chronicle.Emitter in shape
// so callers can bridge to Chronicle without this package importing it.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is one audit record.
type AuditEvent struct {
	Action   string `json:"action"`
	Resource string `json:"resource"`
	Category string `json:"category"`

	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Severities.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Extension records task lifecycle events through a Recorder. Recorder
// errors are logged, never returned to the queue.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil means all
	logger   *slog.Logger
}

// New creates an Extension writing to r.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements ext.Extension.
func (e *Extension) Name() string { return "audit-hook" }

// OnTaskEnqueued implements ext.TaskEnqueued.
func (e *Extension) OnTaskEnqueued(ctx context.Context, queue string, t task.Task) error {
	e.recordTask(ctx, ActionTaskEnqueued, SeverityInfo, OutcomeSuccess, queue, t, nil)
	return nil
}

// OnTaskStarted implements ext.TaskStarted.
func (e *Extension) OnTaskStarted(ctx context.Context, queue string, t task.Task) error {
	e.recordTask(ctx, ActionTaskStarted, SeverityInfo, OutcomeSuccess, queue, t, nil)
	return nil
}

// OnTaskCompleted implements ext.TaskCompleted.
func (e *Extension) OnTaskCompleted(ctx context.Context, queue string, t task.Task, elapsed time.Duration) error {
	e.recordTask(ctx, ActionTaskCompleted, SeverityInfo, OutcomeSuccess, queue, t, nil,
		"elapsed_ms", elapsed.Milliseconds())
	return nil
}

// OnTaskFailed implements ext.TaskFailed.
func (e *Extension) OnTaskFailed(ctx context.Context, queue string, t task.Task, runErr error) error {
	e.recordTask(ctx, ActionTaskFailed, SeverityCritical, OutcomeFailure, queue, t, runErr)
	return nil
}

// OnTaskCancelled implements ext.TaskCancelled.
func (e *Extension) OnTaskCancelled(ctx context.Context, queue string, t task.Task, started bool) error {
	e.recordTask(ctx, ActionTaskCancelled, SeverityWarning, OutcomeFailure, queue, t, nil,
		"started", started)
	return nil
}

// OnShutdown implements ext.Shutdown.
func (e *Extension) OnShutdown(ctx context.Context, queue string) error {
	e.record(ctx, &AuditEvent{
		Action:     ActionQueueShutdown,
		Resource:   ResourceQueue,
		Category:   CategoryQueue,
		ResourceID: queue,
		Outcome:    OutcomeSuccess,
		Severity:   SeverityInfo,
	})
	return nil
}

func (e *Extension) recordTask(
	ctx context.Context,
	action, severity, outcome, queue string,
	t task.Task,
	err error,
	kv ...any,
) {
	meta := map[string]any{
		"queue":     queue,
		"task_name": t.Name(),
	}
	if key := task.KeyOf(t); key != "" {
		meta["key"] = key
	}
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			meta[k] = kv[i+1]
		}
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   ResourceTask,
		Category:   CategoryTask,
		ResourceID: t.ID().String(),
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
	}
	if err != nil {
		evt.Reason = err.Error()
		meta["error"] = err.Error()
	}
	e.record(ctx, evt)
}

func (e *Extension) record(ctx context.Context, evt *AuditEvent) {
	if e.enabled != nil && !e.enabled[evt.Action] {
		return
	}
	if err := e.recorder.Record(ctx, evt); err != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			slog.String("action", evt.Action),
			slog.String("resource_id", evt.ResourceID),
			slog.String("error", err.Error()),
		)
	}
}
