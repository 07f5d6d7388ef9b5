package audithook

// Audit event actions, one per hook.
const (
	ActionTaskEnqueued  = "task.enqueued"
	ActionTaskStarted   = "task.started"
	ActionTaskCompleted = "task.completed"
	ActionTaskFailed    = "task.failed"
	ActionTaskCancelled = "task.cancelled"
	ActionQueueShutdown = "queue.shutdown"
)

// Categories.
const (
	CategoryTask  = "netqueue.task"
	CategoryQueue = "netqueue.queue"
)

// Resources.
const (
	ResourceTask  = "task"
	ResourceQueue = "queue"
)

// AllActions returns every action this extension can emit.
func AllActions() []string {
	return []string{
		ActionTaskEnqueued,
		ActionTaskStarted,
		ActionTaskCompleted,
		ActionTaskFailed,
		ActionTaskCancelled,
		ActionQueueShutdown,
	}
}
