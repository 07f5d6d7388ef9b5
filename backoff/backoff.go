// Package backoff computes how long a request operation waits before
// retrying. Strategies are values and safe for concurrent use.
package backoff

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// Strategy returns the wait before retry attempt n, counting from 1.
type Strategy interface {
	Delay(attempt int) time.Duration
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc func(attempt int) time.Duration

// Delay implements Strategy.
func (f StrategyFunc) Delay(attempt int) time.Duration { return f(attempt) }

// Constant waits d before every retry.
func Constant(d time.Duration) Strategy {
	return StrategyFunc(func(int) time.Duration { return d })
}

// Exponential doubles Base on every attempt up to Max.
//
// Jitter in [0, 1] takes up to that fraction off each delay at random, so
// requests that failed together do not retry together.
type Exponential struct {
	Base   time.Duration
	Max    time.Duration
	Jitter float64
}

// maxShift bounds the doubling; Delay also clamps a Base that would
// overflow at a smaller shift.
const maxShift = 32

// Delay implements Strategy. Without a Max, a delay that would overflow
// is clamped to the largest Duration.
func (e Exponential) Delay(attempt int) time.Duration {
	shift := min(max(attempt-1, 0), maxShift)
	var d time.Duration
	if e.Base > math.MaxInt64>>shift {
		d = math.MaxInt64
	} else {
		d = e.Base << shift
	}
	if e.Max > 0 && d > e.Max {
		d = e.Max
	}
	if j := min(max(e.Jitter, 0), 1); j > 0 && d > 0 {
		d -= time.Duration(rand.Float64() * j * float64(d)) //nolint:gosec // jitter does not need crypto rand
	}
	return d
}

// Default is the strategy request operations use when none is set:
// 100ms doubling to 5s, with half jitter.
func Default() Strategy {
	return Exponential{Base: 100 * time.Millisecond, Max: 5 * time.Second, Jitter: 0.5}
}

// Wait sleeps for d or until ctx is done, whichever is first.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
