package ext

import (
	"context"
	"time"

	"github.com/xraph/netqueue/task"
)

// Extension is the base interface all extensions implement.
type Extension interface {
	// Name returns a unique human-readable name for the extension.
	Name() string
}

// ──────────────────────────────────────────────────
// Task lifecycle hooks
// ──────────────────────────────────────────────────

// TaskEnqueued is called after a task is admitted.
type TaskEnqueued interface {
	OnTaskEnqueued(ctx context.Context, queue string, t task.Task) error
}

// TaskStarted is called right before a task's Run.
type TaskStarted interface {
	OnTaskStarted(ctx context.Context, queue string, t task.Task) error
}

// TaskCompleted is called when Run returns nil.
type TaskCompleted interface {
	OnTaskCompleted(ctx context.Context, queue string, t task.Task, elapsed time.Duration) error
}

// TaskFailed is called when Run returns an error and the task was not
// cancelled.
type TaskFailed interface {
	OnTaskFailed(ctx context.Context, queue string, t task.Task, err error) error
}

// TaskCancelled is called when a task ends cancelled. started tells
// whether Run had been called.
type TaskCancelled interface {
	OnTaskCancelled(ctx context.Context, queue string, t task.Task, started bool) error
}

// ──────────────────────────────────────────────────
// Activity hooks
// ──────────────────────────────────────────────────

// ActivityStarted is called when a queue goes from idle to busy.
type ActivityStarted interface {
	OnActivityStarted(ctx context.Context, queue string) error
}

// ActivityStopped is called when a queue goes from busy to idle.
type ActivityStopped interface {
	OnActivityStopped(ctx context.Context, queue string) error
}

// ──────────────────────────────────────────────────
// Other hooks
// ──────────────────────────────────────────────────

// Shutdown is called when a queue is closed.
type Shutdown interface {
	OnShutdown(ctx context.Context, queue string) error
}
