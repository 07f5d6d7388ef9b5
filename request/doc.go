// Package request provides Operation, an HTTP request that runs as a task
// on a netqueue.Queue.
//
// An Operation is keyed by its target host, so per-host limits configured
// with netqueue.WithKeyLimits apply to it. Transport errors, 429 and 5xx
// responses are retried with a backoff.Strategy; any other response ends
// the operation. Cancelling the queue (or the one task) aborts the
// in-flight HTTP request through its context.
//
//	op := request.New(http.MethodGet, "https://api.example.com/users",
//	    request.WithRetries(2),
//	    request.WithTimeout(10*time.Second),
//	)
//	if err := request.Do(ctx, q, op); err != nil { ... }
//	resp := op.Response()
package request
