// Package observability provides metrics extensions for netqueue.
//
// [MetricsExtension] counts lifecycle events through a go-utils
// MetricFactory. [Gauges] keeps OpenTelemetry up-down counters of the
// tasks currently pending and running.
//
// For per-run tracing and duration histograms, see the middleware
// package: middleware.Tracing() and middleware.Metrics().
package observability
