package relayhook

import (
	"context"
	"time"

	"github.com/xraph/relay"
	"github.com/xraph/relay/event"

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
)

// Extension sends task lifecycle events through Relay.
type Extension struct {
	relay    *relay.Relay
	enabled  map[string]bool // nil means all
	payloads map[string]PayloadFunc
}

// New creates an Extension sending through r.
func New(r *relay.Relay, opts ...Option) *Extension {
	h := &Extension{relay: r}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Name implements ext.Extension.
func (h *Extension) Name() string { return "relay-hook" }

// OnTaskEnqueued implements ext.TaskEnqueued.
func (h *Extension) OnTaskEnqueued(ctx context.Context, queue string, t task.Task) error {
	return h.send(ctx, EventTaskEnqueued, t, newTaskPayload(queue, t))
}

// OnTaskStarted implements ext.TaskStarted.
func (h *Extension) OnTaskStarted(ctx context.Context, queue string, t task.Task) error {
	return h.send(ctx, EventTaskStarted, t, newTaskPayload(queue, t))
}

// OnTaskCompleted implements ext.TaskCompleted.
func (h *Extension) OnTaskCompleted(ctx context.Context, queue string, t task.Task, elapsed time.Duration) error {
	return h.send(ctx, EventTaskCompleted, t, &taskCompletedPayload{
		taskPayload: *newTaskPayload(queue, t),
		ElapsedMs:   elapsed.Milliseconds(),
	})
}

// OnTaskFailed implements ext.TaskFailed.
func (h *Extension) OnTaskFailed(ctx context.Context, queue string, t task.Task, runErr error) error {
	return h.send(ctx, EventTaskFailed, t, &taskFailedPayload{
		taskPayload: *newTaskPayload(queue, t),
		Error:       runErr.Error(),
	})
}

// OnTaskCancelled implements ext.TaskCancelled.
func (h *Extension) OnTaskCancelled(ctx context.Context, queue string, t task.Task, started bool) error {
	return h.send(ctx, EventTaskCancelled, t, &taskCancelledPayload{
		taskPayload: *newTaskPayload(queue, t),
		Started:     started,
	})
}

func (h *Extension) send(ctx context.Context, eventType string, t task.Task, defaultData any) error {
	if h.enabled != nil && !h.enabled[eventType] {
		return nil
	}

	data := defaultData
	if fn, ok := h.payloads[eventType]; ok {
		custom, err := fn(defaultData)
		if err != nil {
			return err
		}
		data = custom
	}

	var tenantID string
	if s, ok := t.(task.Scoped); ok {
		tenantID = s.ScopeOrgID()
	}

	return h.relay.Send(ctx, &event.Event{
		Type:     eventType,
		TenantID: tenantID,
		Data:     data,
	})
}

type taskPayload struct {
	TaskID     string `json:"task_id"`
	TaskName   string `json:"task_name"`
	Queue      string `json:"queue"`
	Key        string `json:"key,omitempty"`
	ScopeAppID string `json:"scope_app_id,omitempty"`
	ScopeOrgID string `json:"scope_org_id,omitempty"`
}

func newTaskPayload(queue string, t task.Task) *taskPayload {
	p := &taskPayload{
		TaskID:   t.ID().String(),
		TaskName: t.Name(),
		Queue:    queue,
		Key:      task.KeyOf(t),
	}
	if s, ok := t.(task.Scoped); ok {
		p.ScopeAppID = s.ScopeAppID()
		p.ScopeOrgID = s.ScopeOrgID()
	}
	return p
}

type taskCompletedPayload struct {
	taskPayload
	ElapsedMs int64 `json:"elapsed_ms"`
}

type taskFailedPayload struct {
	taskPayload
	Error string `json:"error"`
}

type taskCancelledPayload struct {
	taskPayload
	Started bool `json:"started"`
}
