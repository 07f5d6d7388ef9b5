package extension

import (
	"log/slog"

	"github.com/xraph/netqueue"
	"github.com/xraph/netqueue/ext"
	"github.com/xraph/netqueue/limit"
	mw "github.com/xraph/netqueue/middleware"
)

// ExtOption configures the Forge extension.
type ExtOption func(*Extension)

// WithName sets the queue name.
func WithName(name string) ExtOption {
	return func(e *Extension) { e.config.Name = name }
}

// WithConcurrency sets the queue-wide concurrency limit.
func WithConcurrency(n int) ExtOption {
	return func(e *Extension) { e.config.Concurrency = n }
}

// WithExtension registers a queue extension (lifecycle hooks).
func WithExtension(x ext.Extension) ExtOption {
	return func(e *Extension) {
		e.queueOpts = append(e.queueOpts, netqueue.WithExtension(x))
	}
}

// WithMiddleware adds task middleware.
func WithMiddleware(m mw.Middleware) ExtOption {
	return func(e *Extension) {
		e.queueOpts = append(e.queueOpts, netqueue.WithMiddleware(m))
	}
}

// WithKeyLimits adds per-host limits.
func WithKeyLimits(configs ...limit.KeyConfig) ExtOption {
	return func(e *Extension) {
		e.queueOpts = append(e.queueOpts, netqueue.WithKeyLimits(configs...))
	}
}

// WithConfig sets the extension configuration directly.
func WithConfig(cfg Config) ExtOption {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableRoutes skips registering the HTTP API.
func WithDisableRoutes() ExtOption {
	return func(e *Extension) { e.config.DisableRoutes = true }
}

// WithRequireConfig makes Register fail when no config section is found.
func WithRequireConfig(require bool) ExtOption {
	return func(e *Extension) { e.config.RequireConfig = require }
}

// WithLogger sets the queue's logger.
func WithLogger(l *slog.Logger) ExtOption {
	return func(e *Extension) { e.logger = l }
}
