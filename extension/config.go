package extension

import (
	"time"

	"github.com/xraph/netqueue"
)

// Config holds configuration for the netqueue Forge extension.
type Config struct {
	// Name labels the queue. Defaults to "default".
	Name string `json:"name"`

	// Concurrency is the queue-wide limit. Zero or netqueue.Unbounded
	// means no limit.
	Concurrency int `json:"concurrency"`

	// DisableActivitySignal turns off the activity hooks.
	DisableActivitySignal bool `default:"false" json:"disable_activity_signal"`

	// DisableMetrics skips the lifecycle counters and the pending/active
	// gauges.
	DisableMetrics bool `default:"false" json:"disable_metrics"`

	// DisableRoutes skips registering the HTTP API on the app router.
	DisableRoutes bool `default:"false" json:"disable_routes"`

	// ShutdownTimeout bounds draining when the app stops.
	ShutdownTimeout time.Duration `default:"30s" json:"shutdown_timeout"`

	// RequireConfig makes Register fail when no config file section is
	// found.
	RequireConfig bool `json:"-"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	d := netqueue.DefaultConfig()
	return Config{
		Name:            d.Name,
		Concurrency:     d.Concurrency,
		ShutdownTimeout: d.ShutdownTimeout,
	}
}

// queueOptions maps cfg onto netqueue options.
func (c Config) queueOptions() []netqueue.Option {
	concurrency := c.Concurrency
	if concurrency == 0 {
		concurrency = netqueue.Unbounded
	}
	return []netqueue.Option{
		netqueue.WithName(c.Name),
		netqueue.WithConcurrency(concurrency),
		netqueue.WithActivitySignal(!c.DisableActivitySignal),
		netqueue.WithShutdownTimeout(c.ShutdownTimeout),
	}
}
