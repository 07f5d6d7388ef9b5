package netqueue

import "errors"

var (
	// Admission errors.
	ErrNilTask       = errors.New("netqueue: nil task")
	ErrMissingTaskID = errors.New("netqueue: task has no ID")
	ErrDuplicateTask = errors.New("netqueue: task already queued")
	ErrTaskFinished  = errors.New("netqueue: task already finished")
	ErrTaskRunning   = errors.New("netqueue: task is running elsewhere")
	ErrQueueClosed   = errors.New("netqueue: queue closed")

	// Lookup errors.
	ErrTaskNotFound = errors.New("netqueue: task not found")

	// Configuration errors.
	ErrInvalidConcurrency = errors.New("netqueue: invalid concurrency limit")
	ErrInvalidKeyLimit    = errors.New("netqueue: invalid key limit")
)
