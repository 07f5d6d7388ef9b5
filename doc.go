// Package netqueue provides a bounded-concurrency dispatch queue for
// network request tasks.
//
// Callers submit tasks one at a time or in batches. The queue runs them
// with at most a configured number in flight, can cancel everything at
// once, and tells observers when it goes from idle to busy and back so a
// network activity indicator can follow it.
//
// # Quick Start
//
//	q, err := netqueue.New(
//	    netqueue.WithName("api"),
//	    netqueue.WithConcurrency(4),
//	    netqueue.WithExtension(activity.NewIndicator(ui.SetNetworkActivity)),
//	)
//
//	op := request.New(http.MethodGet, "https://api.example.com/users")
//	if err := q.Enqueue(ctx, op); err != nil { ... }
//	<-op.Done()
//
// # Scheduling
//
// Pending tasks start in submission order as slots free up. The limit can
// be changed at any time; lowering it never stops running tasks, it only
// holds back pending ones. Per-key limits (see the limit package) can cap
// a single host on top of the queue-wide limit.
//
// # Cancellation
//
// Cancellation is cooperative. Pending tasks are dropped without ever
// running; running tasks see their context cancelled and are expected to
// return promptly. CancelAll never waits.
//
// # Observing
//
// Lifecycle events go to extensions (see the ext package). Per-run
// tracing, metrics, logging, panic recovery, timeouts and forge scope are
// applied by middleware around each Run.
package netqueue
