package netqueue

import "github.com/xraph/netqueue/id"

// TaskID identifies a task inside a queue.
type TaskID = id.TaskID

// QueueID identifies a queue.
type QueueID = id.QueueID
