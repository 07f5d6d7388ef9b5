// Package middleware provides composable middleware around task execution.
//
// A [Middleware] wraps the call to a task's Run method. Middleware are
// composed with [Chain]; the first middleware in the list is the outermost
// wrapper.
//
//	// logging → recover → task.Run
//	chain := middleware.Chain(middleware.Logging(logger), middleware.Recover(logger))
//
// # Built-in Middleware
//
//   - [Logging]: logs task name, queue, duration, and outcome
//   - [Recover]: turns a panic inside Run into an error
//   - [Timeout]: applies a task's own deadline (see task.Timed)
//   - [Tracing]: wraps the run in an OpenTelemetry span
//   - [Metrics]: records run duration and outcome counters
//   - [Scope]: restores the forge scope a task captured at enqueue time
//
// Middleware MUST call next unless intentionally short-circuiting.
package middleware
