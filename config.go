package netqueue

import (
	"time"

	"github.com/xraph/netqueue/limit"
)

// Unbounded lifts the concurrency limit.
const Unbounded = limit.Unbounded

// Config holds configuration for a Queue.
type Config struct {
	// Name labels the queue in logs, metrics, spans and extension hooks.
	Name string

	// Concurrency is the maximum number of tasks running at once: a
	// positive number or Unbounded.
	Concurrency int

	// ActivitySignal enables the ActivityStarted/ActivityStopped hooks.
	ActivitySignal bool

	// ShutdownTimeout bounds Close when its context has no deadline.
	// Zero waits indefinitely.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Name:            "default",
		Concurrency:     Unbounded,
		ActivitySignal:  true,
		ShutdownTimeout: 30 * time.Second,
	}
}
