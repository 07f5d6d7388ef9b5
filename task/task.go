package task

import (
	"context"
	"time"

	"github.com/xraph/netqueue/id"
)

// State is the lifecycle state of a task inside a queue.
type State string

const (
	// StatePending means the task is waiting for a concurrency slot.
	StatePending State = "pending"
	// StateRunning means Run has been called and has not returned.
	StateRunning State = "running"
	// StateCompleted means Run returned without cancellation being requested,
	// whether or not it returned an error.
	StateCompleted State = "completed"
	// StateCancelled means the task was cancelled before it started, or
	// cancellation was requested while it ran.
	StateCancelled State = "cancelled"
)

// Terminal reports whether s is a final state.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCancelled
}

// Task is a unit of work run by a queue.
type Task interface {
	ID() id.TaskID
	Name() string
	// Run performs the work. It must return promptly once ctx is done.
	Run(ctx context.Context) error
}

// Tracker is notified of every state transition. err is only set for
// terminal states.
type Tracker interface {
	Track(state State, err error)
}

// Stateful exposes a task's current state.
type Stateful interface {
	State() State
}

// Keyed tasks are limited per key in addition to the queue-wide limit.
type Keyed interface {
	Key() string
}

// Scoped tasks carry multi-tenant scope into Run's context.
type Scoped interface {
	ScopeAppID() string
	ScopeOrgID() string
}

// Timed tasks get a deadline on Run's context. Zero means none.
type Timed interface {
	Timeout() time.Duration
}

// KeyOf returns t's limiter key, or "" if it has none.
func KeyOf(t Task) string {
	if k, ok := t.(Keyed); ok {
		return k.Key()
	}
	return ""
}
