package ext

import (
	"context"
	"log/slog"
	"time"

	"github.com/xraph/netqueue/task"
)

// entry pairs a hook with the extension name captured at registration.
type entry[H any] struct {
	name string
	hook H
}

// Registry holds registered extensions and dispatches lifecycle events
// to them. Hooks are type-cached at registration so each emit walks only
// the extensions that implement it. Register all extensions before the
// registry is shared; emits are safe for concurrent use afterwards.
type Registry struct {
	extensions []Extension
	logger     *slog.Logger

	taskEnqueued    []entry[TaskEnqueued]
	taskStarted     []entry[TaskStarted]
	taskCompleted   []entry[TaskCompleted]
	taskFailed      []entry[TaskFailed]
	taskCancelled   []entry[TaskCancelled]
	activityStarted []entry[ActivityStarted]
	activityStopped []entry[ActivityStopped]
	shutdown        []entry[Shutdown]
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{logger: logger}
}

// Register adds e to every hook list it implements. Extensions are
// notified in registration order.
func (r *Registry) Register(e Extension) {
	r.extensions = append(r.extensions, e)
	name := e.Name()

	cache(&r.taskEnqueued, name, e)
	cache(&r.taskStarted, name, e)
	cache(&r.taskCompleted, name, e)
	cache(&r.taskFailed, name, e)
	cache(&r.taskCancelled, name, e)
	cache(&r.activityStarted, name, e)
	cache(&r.activityStopped, name, e)
	cache(&r.shutdown, name, e)
}

func cache[H any](list *[]entry[H], name string, e Extension) {
	if h, ok := e.(H); ok {
		*list = append(*list, entry[H]{name: name, hook: h})
	}
}

// Extensions returns all registered extensions.
func (r *Registry) Extensions() []Extension { return r.extensions }

// EmitTaskEnqueued notifies TaskEnqueued hooks.
func (r *Registry) EmitTaskEnqueued(ctx context.Context, queue string, t task.Task) {
	for _, e := range r.taskEnqueued {
		r.check("OnTaskEnqueued", e.name, e.hook.OnTaskEnqueued(ctx, queue, t))
	}
}

// EmitTaskStarted notifies TaskStarted hooks.
func (r *Registry) EmitTaskStarted(ctx context.Context, queue string, t task.Task) {
	for _, e := range r.taskStarted {
		r.check("OnTaskStarted", e.name, e.hook.OnTaskStarted(ctx, queue, t))
	}
}

// EmitTaskCompleted notifies TaskCompleted hooks.
func (r *Registry) EmitTaskCompleted(ctx context.Context, queue string, t task.Task, elapsed time.Duration) {
	for _, e := range r.taskCompleted {
		r.check("OnTaskCompleted", e.name, e.hook.OnTaskCompleted(ctx, queue, t, elapsed))
	}
}

// EmitTaskFailed notifies TaskFailed hooks.
func (r *Registry) EmitTaskFailed(ctx context.Context, queue string, t task.Task, runErr error) {
	for _, e := range r.taskFailed {
		r.check("OnTaskFailed", e.name, e.hook.OnTaskFailed(ctx, queue, t, runErr))
	}
}

// EmitTaskCancelled notifies TaskCancelled hooks.
func (r *Registry) EmitTaskCancelled(ctx context.Context, queue string, t task.Task, started bool) {
	for _, e := range r.taskCancelled {
		r.check("OnTaskCancelled", e.name, e.hook.OnTaskCancelled(ctx, queue, t, started))
	}
}

// EmitActivityStarted notifies ActivityStarted hooks.
func (r *Registry) EmitActivityStarted(ctx context.Context, queue string) {
	for _, e := range r.activityStarted {
		r.check("OnActivityStarted", e.name, e.hook.OnActivityStarted(ctx, queue))
	}
}

// EmitActivityStopped notifies ActivityStopped hooks.
func (r *Registry) EmitActivityStopped(ctx context.Context, queue string) {
	for _, e := range r.activityStopped {
		r.check("OnActivityStopped", e.name, e.hook.OnActivityStopped(ctx, queue))
	}
}

// EmitShutdown notifies Shutdown hooks.
func (r *Registry) EmitShutdown(ctx context.Context, queue string) {
	for _, e := range r.shutdown {
		r.check("OnShutdown", e.name, e.hook.OnShutdown(ctx, queue))
	}
}

// check logs a hook error. Hook errors never propagate into the queue.
func (r *Registry) check(hook, extName string, err error) {
	if err == nil {
		return
	}
	r.logger.Warn("extension hook error",
		slog.String("hook", hook),
		slog.String("extension", extName),
		slog.String("error", err.Error()),
	)
}
