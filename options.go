package netqueue

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/xraph/netqueue/ext"
	"github.com/xraph/netqueue/limit"
	"github.com/xraph/netqueue/middleware"
)

// Option configures a Queue.
type Option func(*Queue) error

// WithName sets the queue name.
func WithName(name string) Option {
	return func(q *Queue) error {
		q.config.Name = name
		return nil
	}
}

// WithConcurrency sets the initial concurrency limit. n must be positive
// or Unbounded.
func WithConcurrency(n int) Option {
	return func(q *Queue) error {
		if !limit.Valid(n) {
			return invalidConcurrency(n)
		}
		q.config.Concurrency = n
		return nil
	}
}

// WithActivitySignal sets whether activity hooks are emitted.
func WithActivitySignal(enabled bool) Option {
	return func(q *Queue) error {
		q.config.ActivitySignal = enabled
		return nil
	}
}

// WithShutdownTimeout bounds Close when its context has no deadline.
func WithShutdownTimeout(d time.Duration) Option {
	return func(q *Queue) error {
		q.config.ShutdownTimeout = d
		return nil
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(q *Queue) error {
		q.logger = l
		return nil
	}
}

// WithExtension registers an extension. Extensions are notified in
// registration order.
func WithExtension(e ext.Extension) Option {
	return func(q *Queue) error {
		q.exts = append(q.exts, e)
		return nil
	}
}

// WithMiddleware appends middleware after the built-in chain.
func WithMiddleware(mws ...middleware.Middleware) Option {
	return func(q *Queue) error {
		q.mws = append(q.mws, mws...)
		return nil
	}
}

// WithKeyLimits adds per-key concurrency and rate limits. Tasks are keyed
// through task.Keyed; request operations use their target host.
func WithKeyLimits(configs ...limit.KeyConfig) Option {
	return func(q *Queue) error {
		q.keyLimits = append(q.keyLimits, configs...)
		return nil
	}
}

// WithTracerProvider sets the TracerProvider used by the tracing
// middleware instead of the global one.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(q *Queue) error {
		q.tracerProvider = tp
		return nil
	}
}

// WithMeterProvider sets the MeterProvider used by the metrics middleware
// instead of the global one.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(q *Queue) error {
		q.meterProvider = mp
		return nil
	}
}
