// Package ext defines the extension system for netqueue.
//
// Extensions are notified of queue lifecycle events and react to them:
// counting metrics, driving a network activity indicator, writing logs.
// Each hook is a separate interface so an extension implements only the
// events it cares about.
//
// # Implementing an Extension
//
//	type Spinner struct{ ui *UI }
//
//	func (s *Spinner) Name() string { return "spinner" }
//
//	func (s *Spinner) OnActivityStarted(ctx context.Context, queue string) error {
//	    s.ui.ShowSpinner()
//	    return nil
//	}
//
// # Task Hooks
//
//   - [TaskEnqueued]: task admitted to the queue
//   - [TaskStarted]: a slot was granted and Run is about to be called
//   - [TaskCompleted]: Run returned nil
//   - [TaskFailed]: Run returned an error (the queue still treats the task as done)
//   - [TaskCancelled]: task cancelled, before or during Run
//
// # Activity Hooks
//
//   - [ActivityStarted]: the active count went from zero to one
//   - [ActivityStopped]: the active count went back to zero
//
// Activity hooks are called while the queue holds its internal lock so
// that they are delivered in transition order. They must return quickly
// and must not call back into the queue.
//
// # Other Hooks
//
//   - [Shutdown]: the queue is closing
//
// The [Registry] fans each event out to every registered extension that
// implements the matching hook.
package ext
