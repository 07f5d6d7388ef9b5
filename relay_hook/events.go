package relayhook

import (
	"context"

	"github.com/xraph/relay"
	"github.com/xraph/relay/catalog"
)

// Event types, one per hook.
const (
	EventTaskEnqueued  = "netqueue.task.enqueued"
	EventTaskStarted   = "netqueue.task.started"
	EventTaskCompleted = "netqueue.task.completed"
	EventTaskFailed    = "netqueue.task.failed"
	EventTaskCancelled = "netqueue.task.cancelled"
)

const definitionVersion = "2025-01-01"

// AllDefinitions returns webhook definitions for every event type.
func AllDefinitions() []catalog.WebhookDefinition {
	return []catalog.WebhookDefinition{
		{
			Name:        EventTaskEnqueued,
			Description: "Fired when a task is admitted to a queue.",
			Group:       "tasks",
			Version:     definitionVersion,
		},
		{
			Name:        EventTaskStarted,
			Description: "Fired when a queue starts running a task.",
			Group:       "tasks",
			Version:     definitionVersion,
		},
		{
			Name:        EventTaskCompleted,
			Description: "Fired when a task finishes without error.",
			Group:       "tasks",
			Version:     definitionVersion,
		},
		{
			Name:        EventTaskFailed,
			Description: "Fired when a task's run returns an error.",
			Group:       "tasks",
			Version:     definitionVersion,
		},
		{
			Name:        EventTaskCancelled,
			Description: "Fired when a task is cancelled, pending or running.",
			Group:       "tasks",
			Version:     definitionVersion,
		},
	}
}

// RegisterAll registers every event type in the Relay catalog. Call it
// once at startup before tasks run.
func RegisterAll(ctx context.Context, r *relay.Relay) error {
	for _, def := range AllDefinitions() {
		if _, err := r.RegisterEventType(ctx, def); err != nil {
			return err
		}
	}
	return nil
}
