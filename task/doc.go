// Package task defines the unit of work accepted by a netqueue.Queue.
//
// # Task
//
// A [Task] is opaque to the queue. The queue only needs an identity, a
// name for logs and metrics, and a blocking Run method:
//
//	type Task interface {
//	    ID() id.TaskID
//	    Name() string
//	    Run(ctx context.Context) error
//	}
//
// The queue calls Run on its own goroutine once a concurrency slot is
// free. Cancellation is cooperative: the queue cancels ctx and Run is
// expected to notice at its next safe point and return. Whatever Run
// returns, the queue treats the task as terminal.
//
// # Optional capabilities
//
// Tasks opt in to extra behaviour by implementing small interfaces:
//
//   - [Tracker] receives every state transition, including pending tasks
//     cancelled before they ever ran
//   - [Stateful] exposes the current state so a finished task cannot be
//     queued again
//   - [Keyed] names the limiter key (for requests, the target host)
//   - [Scoped] carries the app/org scope captured at enqueue time
//   - [Timed] sets a per-run deadline
//
// [Status] implements Tracker and Stateful and can be embedded. [Func]
// turns a plain function into a Task.
//
// # States
//
//	pending → running → completed
//	pending → running → cancelled
//	pending → cancelled
package task
