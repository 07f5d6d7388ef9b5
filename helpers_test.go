package netqueue_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/xraph/netqueue/task"
)

// recorder is an extension that logs activity transitions and task runs
// in the order they happen.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) Name() string { return "recorder" }

func (r *recorder) OnActivityStarted(_ context.Context, _ string) error {
	r.add("started")
	return nil
}

func (r *recorder) OnActivityStopped(_ context.Context, _ string) error {
	r.add("stopped")
	return nil
}

func (r *recorder) add(ev string) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// blocker returns a task that runs until release is closed or its
// context is cancelled.
func blocker(name string, release <-chan struct{}) *task.Func {
	return task.NewFunc(name, func(ctx context.Context) error {
		select {
		case <-release:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

// gauge tracks how many tasks are inside Run and the highest value seen.
type gauge struct {
	current atomic.Int32
	peak    atomic.Int32
}

func (g *gauge) enter() {
	n := g.current.Add(1)
	for {
		p := g.peak.Load()
		if n <= p || g.peak.CompareAndSwap(p, n) {
			return
		}
	}
}

func (g *gauge) leave() { g.current.Add(-1) }

// keyedTask adds a limiter key to a Func.
type keyedTask struct {
	*task.Func
	key string
}

func (k *keyedTask) Key() string { return k.key }

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func waitDone(t *testing.T, fns ...*task.Func) {
	t.Helper()
	for _, f := range fns {
		select {
		case <-f.Done():
		case <-time.After(2 * time.Second):
			t.Fatalf("task %s did not finish (state %s)", f.Name(), f.State())
		}
	}
}

func equalEvents(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
