// Package worker runs a single task through the middleware chain and
// reports how it ended.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/xraph/netqueue/ext"
	"github.com/xraph/netqueue/middleware"
	"github.com/xraph/netqueue/task"
)

// Outcome is how one run ended.
type Outcome struct {
	State   task.State
	Err     error
	Elapsed time.Duration
}

// Executor invokes a task's Run through middleware, then reports the
// terminal state to the task's Tracker and to extensions.
type Executor struct {
	queue      string
	extensions *ext.Registry
	mw         middleware.Middleware
	logger     *slog.Logger
}

// NewExecutor creates an Executor for the named queue.
func NewExecutor(queue string, extensions *ext.Registry, logger *slog.Logger, mws ...middleware.Middleware) *Executor {
	return &Executor{
		queue:      queue,
		extensions: extensions,
		mw:         middleware.Chain(mws...),
		logger:     logger,
	}
}

// Execute runs t with ctx. ctx is the run context owned by the queue; if
// it is cancelled by the time Run returns the task ends cancelled,
// otherwise completed, whatever Run returned.
func (e *Executor) Execute(ctx context.Context, t task.Task) Outcome {
	track(t, task.StateRunning, nil)
	e.extensions.EmitTaskStarted(ctx, e.queue, t)

	start := time.Now()
	err := e.mw(ctx, e.queue, t, t.Run)
	elapsed := time.Since(start)

	// Hooks get a live context even when the run context was cancelled.
	hookCtx := context.WithoutCancel(ctx)

	if ctx.Err() != nil {
		return e.handleCancelled(hookCtx, t, err, elapsed)
	}
	if err != nil {
		return e.handleFailure(hookCtx, t, err, elapsed)
	}
	return e.handleSuccess(hookCtx, t, elapsed)
}

func (e *Executor) handleSuccess(ctx context.Context, t task.Task, elapsed time.Duration) Outcome {
	track(t, task.StateCompleted, nil)
	e.extensions.EmitTaskCompleted(ctx, e.queue, t, elapsed)
	return Outcome{State: task.StateCompleted, Elapsed: elapsed}
}

// handleFailure still completes the task: the queue never retries and a
// task's own error is only reported, never acted on.
func (e *Executor) handleFailure(ctx context.Context, t task.Task, err error, elapsed time.Duration) Outcome {
	track(t, task.StateCompleted, err)
	e.extensions.EmitTaskFailed(ctx, e.queue, t, err)
	e.logger.Debug("task failed",
		slog.String("queue", e.queue),
		slog.String("task_id", t.ID().String()),
		slog.String("task_name", t.Name()),
		slog.String("error", err.Error()),
	)
	return Outcome{State: task.StateCompleted, Err: err, Elapsed: elapsed}
}

func (e *Executor) handleCancelled(ctx context.Context, t task.Task, err error, elapsed time.Duration) Outcome {
	if err == nil {
		// The task ignored cancellation and finished; its result is dropped.
		err = context.Canceled
	}
	track(t, task.StateCancelled, err)
	e.extensions.EmitTaskCancelled(ctx, e.queue, t, true)
	return Outcome{State: task.StateCancelled, Err: err, Elapsed: elapsed}
}

func track(t task.Task, state task.State, err error) {
	if tr, ok := t.(task.Tracker); ok {
		tr.Track(state, err)
	}
}

// MarkCancelled records that a task was dropped before it started.
func (e *Executor) MarkCancelled(t task.Task) {
	track(t, task.StateCancelled, context.Canceled)
}

// NotifyCancelled emits the cancellation hook for a task dropped before
// it started.
func (e *Executor) NotifyCancelled(ctx context.Context, t task.Task) {
	e.extensions.EmitTaskCancelled(ctx, e.queue, t, false)
}
