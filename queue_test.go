package netqueue_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/xraph/netqueue"
	"github.com/xraph/netqueue/activity"
	"github.com/xraph/netqueue/limit"
	"github.com/xraph/netqueue/task"
)

func newQueue(t *testing.T, opts ...netqueue.Option) (*netqueue.Queue, *recorder) {
	t.Helper()
	rec := &recorder{}
	opts = append([]netqueue.Option{netqueue.WithExtension(rec)}, opts...)
	q, err := netqueue.New(opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		q.CancelAll()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = q.Close(ctx)
	})
	return q, rec
}

func TestNew_Defaults(t *testing.T) {
	q, _ := newQueue(t)

	if q.ConcurrencyLimit() != netqueue.Unbounded {
		t.Errorf("limit = %d, want Unbounded", q.ConcurrencyLimit())
	}
	if !q.ActivitySignal() {
		t.Error("activity signal disabled by default")
	}
	if q.Name() != "default" {
		t.Errorf("name = %q, want default", q.Name())
	}
	if q.ID().IsNil() {
		t.Error("queue has nil ID")
	}
}

func TestNew_InvalidConcurrency(t *testing.T) {
	for _, n := range []int{0, -2, -100} {
		_, err := netqueue.New(netqueue.WithConcurrency(n))
		if !errors.Is(err, netqueue.ErrInvalidConcurrency) {
			t.Errorf("WithConcurrency(%d): err = %v, want ErrInvalidConcurrency", n, err)
		}
	}
}

func TestEnqueue_RunsTask(t *testing.T) {
	q, _ := newQueue(t)

	var ran atomic.Bool
	f := task.NewFunc("ping", func(context.Context) error {
		ran.Store(true)
		return nil
	})
	if err := q.Enqueue(context.Background(), f); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	waitDone(t, f)

	if !ran.Load() {
		t.Error("task did not run")
	}
	if f.State() != task.StateCompleted || f.Err() != nil {
		t.Errorf("state=%s err=%v, want completed/nil", f.State(), f.Err())
	}
	waitFor(t, "queue to empty", func() bool { return q.Len() == 0 })
}

// syncBuffer is a bytes.Buffer safe for concurrent log writes.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestFinish_LogsOutcome(t *testing.T) {
	var out syncBuffer
	logger := slog.New(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	q, _ := newQueue(t, netqueue.WithLogger(logger))

	f := task.NewFunc("logged", func(context.Context) error { return nil })
	if err := q.Enqueue(context.Background(), f); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	waitFor(t, "task finished log", func() bool {
		return strings.Contains(out.String(), "task finished")
	})
	if got := out.String(); !strings.Contains(got, "state=completed") || !strings.Contains(got, "task_id="+f.ID().String()) {
		t.Errorf("finish log missing state or task id:\n%s", got)
	}
}

func TestEnqueue_TaskErrorIsOpaque(t *testing.T) {
	q, _ := newQueue(t, netqueue.WithConcurrency(1))

	boom := errors.New("503 from upstream")
	failing := task.NewFunc("failing", func(context.Context) error { return boom })
	next := task.NewFunc("next", func(context.Context) error { return nil })

	if err := q.EnqueueBatch(context.Background(), []task.Task{failing, next}); err != nil {
		t.Fatalf("EnqueueBatch: %v", err)
	}
	waitDone(t, failing, next)

	if failing.State() != task.StateCompleted || !errors.Is(failing.Err(), boom) {
		t.Errorf("failing: state=%s err=%v", failing.State(), failing.Err())
	}
	if next.State() != task.StateCompleted || next.Err() != nil {
		t.Errorf("next: state=%s err=%v", next.State(), next.Err())
	}
}

func TestEnqueue_UsageErrors(t *testing.T) {
	q, _ := newQueue(t, netqueue.WithConcurrency(1))
	ctx := context.Background()

	release := make(chan struct{})
	defer close(release)
	running := blocker("running", release)
	if err := q.Enqueue(ctx, running); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	finished := task.NewFunc("finished", func(context.Context) error { return nil })
	finished.Track(task.StateCompleted, nil)

	other, _ := newQueue(t)
	elsewhere := blocker("elsewhere", release)
	if err := other.Enqueue(ctx, elsewhere); err != nil {
		t.Fatalf("Enqueue other: %v", err)
	}
	waitFor(t, "elsewhere running", func() bool { return elsewhere.State() == task.StateRunning })

	tests := []struct {
		name string
		task task.Task
		want error
	}{
		{"nil", nil, netqueue.ErrNilTask},
		{"typed nil", (*task.Func)(nil), netqueue.ErrNilTask},
		{"typed nil keyed", (*keyedTask)(nil), netqueue.ErrNilTask},
		{"duplicate", running, netqueue.ErrDuplicateTask},
		{"finished", finished, netqueue.ErrTaskFinished},
		{"running in another queue", elsewhere, netqueue.ErrTaskRunning},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := q.Enqueue(ctx, tt.task)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if q.Len() != 1 || q.Active() != 1 {
				t.Errorf("queue changed: len=%d active=%d", q.Len(), q.Active())
			}
		})
	}
}

func TestEnqueueBatch_TypedNilNamesIndex(t *testing.T) {
	q, _ := newQueue(t)

	ok := task.NewFunc("ok", func(context.Context) error { return nil })
	err := q.EnqueueBatch(context.Background(), []task.Task{ok, (*task.Func)(nil)})
	if !errors.Is(err, netqueue.ErrNilTask) {
		t.Fatalf("err = %v, want ErrNilTask", err)
	}
	if want := "batch index 1"; !strings.Contains(err.Error(), want) {
		t.Errorf("err %q does not name %q", err, want)
	}
	if q.Len() != 0 {
		t.Errorf("len = %d, want 0", q.Len())
	}
}

// reentrant is an extension whose task hooks call back into the queue.
type reentrant struct {
	q         *netqueue.Queue
	enqueued  atomic.Int32
	cancelled atomic.Int32
	panicOn   string
}

func (r *reentrant) Name() string { return "reentrant" }

func (r *reentrant) OnTaskEnqueued(_ context.Context, _ string, t task.Task) error {
	if t.Name() == r.panicOn {
		panic("enqueue hook failed")
	}
	r.enqueued.Add(int32(r.q.Len()))
	return nil
}

func (r *reentrant) OnTaskCancelled(_ context.Context, _ string, _ task.Task, _ bool) error {
	r.cancelled.Add(int32(r.q.Pending() + 1))
	return nil
}

func TestTaskHooks_MayCallBackIntoQueue(t *testing.T) {
	hook := &reentrant{}
	q, _ := newQueue(t, netqueue.WithConcurrency(1), netqueue.WithExtension(hook))
	hook.q = q

	release := make(chan struct{})
	defer close(release)
	first := blocker("first", release)
	second := blocker("second", release)
	if err := q.EnqueueBatch(context.Background(), []task.Task{first, second}); err != nil {
		t.Fatalf("EnqueueBatch: %v", err)
	}
	if got := hook.enqueued.Load(); got != 4 {
		t.Errorf("enqueue hooks saw len sum %d, want 4", got)
	}

	done := make(chan struct{})
	go func() {
		q.CancelAll()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("CancelAll blocked on a cancellation hook")
	}
	if second.State() != task.StateCancelled {
		t.Errorf("second state = %s, want cancelled", second.State())
	}
	if hook.cancelled.Load() < 1 {
		t.Error("cancellation hook did not run")
	}
}

func TestEnqueue_PanickingHookLeavesQueueUsable(t *testing.T) {
	hook := &reentrant{panicOn: "boom"}
	q, _ := newQueue(t, netqueue.WithExtension(hook))
	hook.q = q

	f := task.NewFunc("boom", func(context.Context) error { return nil })
	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected the hook panic to reach the caller")
			}
		}()
		_ = q.Enqueue(context.Background(), f)
	}()

	waitDone(t, f)
	waitFor(t, "queue empty", func() bool { return q.Len() == 0 })

	next := task.NewFunc("next", func(context.Context) error { return nil })
	if err := q.Enqueue(context.Background(), next); err != nil {
		t.Fatalf("Enqueue after panic: %v", err)
	}
	waitDone(t, next)
}

func TestEnqueueBatch_AllOrNothing(t *testing.T) {
	q, _ := newQueue(t, netqueue.WithConcurrency(1))
	ctx := context.Background()

	a := task.NewFunc("a", func(context.Context) error { return nil })
	b := task.NewFunc("b", func(context.Context) error { return nil })

	err := q.EnqueueBatch(ctx, []task.Task{a, b, a})
	if !errors.Is(err, netqueue.ErrDuplicateTask) {
		t.Fatalf("err = %v, want ErrDuplicateTask", err)
	}
	if want := "batch index 2"; !strings.Contains(err.Error(), want) {
		t.Errorf("err %q does not name %q", err, want)
	}
	if q.Len() != 0 {
		t.Errorf("len = %d after rejected batch, want 0", q.Len())
	}
	if a.State() != task.StatePending {
		t.Errorf("a state = %s, want pending", a.State())
	}

	if err := q.EnqueueBatch(ctx, []task.Task{a, nil}); !errors.Is(err, netqueue.ErrNilTask) {
		t.Errorf("err = %v, want ErrNilTask", err)
	}
	if err := q.EnqueueBatch(ctx, nil); err != nil {
		t.Errorf("empty batch: %v", err)
	}
	if q.Len() != 0 {
		t.Errorf("len = %d, want 0", q.Len())
	}
}

func TestQueue_LimitNeverExceeded(t *testing.T) {
	const (
		limit   = 3
		workers = 8
		perG    = 25
	)
	q, _ := newQueue(t, netqueue.WithConcurrency(limit))

	var g gauge
	var done atomic.Int32
	work := func(ctx context.Context) error {
		g.enter()
		defer g.leave()
		if n := q.Active(); n > limit {
			return fmt.Errorf("active = %d", n)
		}
		time.Sleep(100 * time.Microsecond)
		done.Add(1)
		return nil
	}

	var eg errgroup.Group
	for w := range workers {
		eg.Go(func() error {
			for i := range perG {
				f := task.NewFunc(fmt.Sprintf("w%d-%d", w, i), work)
				if err := q.Enqueue(context.Background(), f); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := q.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	if got := done.Load(); got != workers*perG {
		t.Errorf("completed %d tasks, want %d", got, workers*perG)
	}
	if peak := g.peak.Load(); peak > limit {
		t.Errorf("peak concurrency %d exceeds limit %d", peak, limit)
	}
}

func TestQueue_StartsUpToLimit(t *testing.T) {
	q, _ := newQueue(t, netqueue.WithConcurrency(3))

	release := make(chan struct{})
	defer close(release)

	tasks := make([]task.Task, 5)
	for i := range tasks {
		tasks[i] = blocker(fmt.Sprintf("t%d", i), release)
	}
	if err := q.EnqueueBatch(context.Background(), tasks); err != nil {
		t.Fatalf("EnqueueBatch: %v", err)
	}

	if q.Active() != 3 || q.Pending() != 2 {
		t.Fatalf("active=%d pending=%d, want 3/2", q.Active(), q.Pending())
	}
	for i, tk := range tasks {
		f := tk.(*task.Func)
		if i < 3 {
			waitFor(t, f.Name()+" running", func() bool { return f.State() == task.StateRunning })
		} else if f.State() != task.StatePending {
			t.Errorf("%s state = %s, want pending", f.Name(), f.State())
		}
	}
}

func TestCancelAll_PendingNeverRunsRunningCancelled(t *testing.T) {
	q, rec := newQueue(t, netqueue.WithConcurrency(1))

	release := make(chan struct{})
	defer close(release)

	running := blocker("running", release)
	var pendingRan atomic.Bool
	pending := task.NewFunc("pending", func(context.Context) error {
		pendingRan.Store(true)
		return nil
	})

	if err := q.EnqueueBatch(context.Background(), []task.Task{running, pending}); err != nil {
		t.Fatalf("EnqueueBatch: %v", err)
	}
	waitFor(t, "running to start", func() bool { return running.State() == task.StateRunning })

	q.CancelAll()
	q.CancelAll()

	if pending.State() != task.StateCancelled {
		t.Errorf("pending state = %s, want cancelled", pending.State())
	}
	waitDone(t, running)
	if running.State() != task.StateCancelled {
		t.Errorf("running state = %s, want cancelled", running.State())
	}
	if !errors.Is(running.Err(), context.Canceled) {
		t.Errorf("running err = %v, want context.Canceled", running.Err())
	}
	if pendingRan.Load() {
		t.Error("cancelled pending task ran")
	}

	waitFor(t, "activity stopped", func() bool { return len(rec.Events()) == 2 })
	if got := rec.Events(); !equalEvents(got, []string{"started", "stopped"}) {
		t.Errorf("events = %v", got)
	}
}

func TestCancelAll_IgnoredCancellationStillCancelled(t *testing.T) {
	q, _ := newQueue(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	stubborn := task.NewFunc("stubborn", func(context.Context) error {
		close(entered)
		<-release
		return nil
	})
	if err := q.Enqueue(context.Background(), stubborn); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	<-entered

	q.CancelAll()
	if q.Active() != 1 {
		t.Errorf("active = %d, CancelAll must not wait or force-stop", q.Active())
	}
	close(release)
	waitDone(t, stubborn)

	if stubborn.State() != task.StateCancelled {
		t.Errorf("state = %s, want cancelled", stubborn.State())
	}
}

func TestCancel_Single(t *testing.T) {
	q, _ := newQueue(t, netqueue.WithConcurrency(1))

	release := make(chan struct{})
	defer close(release)

	first := blocker("first", release)
	second := blocker("second", release)
	if err := q.EnqueueBatch(context.Background(), []task.Task{first, second}); err != nil {
		t.Fatalf("EnqueueBatch: %v", err)
	}

	if err := q.Cancel(second.ID()); err != nil {
		t.Fatalf("Cancel pending: %v", err)
	}
	if second.State() != task.StateCancelled || q.Pending() != 0 {
		t.Errorf("second state=%s pending=%d", second.State(), q.Pending())
	}

	if err := q.Cancel(first.ID()); err != nil {
		t.Fatalf("Cancel running: %v", err)
	}
	waitDone(t, first)
	if first.State() != task.StateCancelled {
		t.Errorf("first state = %s, want cancelled", first.State())
	}

	waitFor(t, "queue to empty", func() bool { return q.Len() == 0 })
	if err := q.Cancel(first.ID()); !errors.Is(err, netqueue.ErrTaskNotFound) {
		t.Errorf("err = %v, want ErrTaskNotFound", err)
	}
}

func TestSetConcurrencyLimit_RaiseStartsPending(t *testing.T) {
	q, _ := newQueue(t, netqueue.WithConcurrency(1))

	release := make(chan struct{})
	defer close(release)

	tasks := []task.Task{blocker("a", release), blocker("b", release), blocker("c", release)}
	if err := q.EnqueueBatch(context.Background(), tasks); err != nil {
		t.Fatalf("EnqueueBatch: %v", err)
	}
	if q.Active() != 1 {
		t.Fatalf("active = %d, want 1", q.Active())
	}

	if err := q.SetConcurrencyLimit(3); err != nil {
		t.Fatalf("SetConcurrencyLimit: %v", err)
	}
	if q.Active() != 3 || q.Pending() != 0 {
		t.Errorf("active=%d pending=%d after raise, want 3/0", q.Active(), q.Pending())
	}
}

func TestSetConcurrencyLimit_LowerKeepsRunning(t *testing.T) {
	q, _ := newQueue(t, netqueue.WithConcurrency(3))

	releases := make([]chan struct{}, 5)
	tasks := make([]*task.Func, 5)
	batch := make([]task.Task, 5)
	for i := range tasks {
		releases[i] = make(chan struct{})
		tasks[i] = blocker(fmt.Sprintf("t%d", i), releases[i])
		batch[i] = tasks[i]
	}
	if err := q.EnqueueBatch(context.Background(), batch); err != nil {
		t.Fatalf("EnqueueBatch: %v", err)
	}

	if err := q.SetConcurrencyLimit(1); err != nil {
		t.Fatalf("SetConcurrencyLimit: %v", err)
	}
	if q.Active() != 3 {
		t.Fatalf("active = %d after lowering, running tasks must keep going", q.Active())
	}

	// Two completions leave one running: still at the new limit.
	close(releases[0])
	close(releases[1])
	waitDone(t, tasks[0], tasks[1])
	waitFor(t, "slots released", func() bool { return q.Active() == 1 })
	if q.Pending() != 2 {
		t.Errorf("pending = %d, want 2", q.Pending())
	}

	close(releases[2])
	waitFor(t, "t3 to start", func() bool { return tasks[3].State() == task.StateRunning })
	if tasks[4].State() != task.StatePending {
		t.Errorf("t4 state = %s, want pending", tasks[4].State())
	}

	close(releases[3])
	close(releases[4])
	waitDone(t, tasks[3], tasks[4])
}

func TestSetConcurrencyLimit_Invalid(t *testing.T) {
	q, _ := newQueue(t, netqueue.WithConcurrency(2))

	for _, n := range []int{0, -5} {
		if err := q.SetConcurrencyLimit(n); !errors.Is(err, netqueue.ErrInvalidConcurrency) {
			t.Errorf("SetConcurrencyLimit(%d) = %v, want ErrInvalidConcurrency", n, err)
		}
	}
	if q.ConcurrencyLimit() != 2 {
		t.Errorf("limit = %d, want unchanged 2", q.ConcurrencyLimit())
	}
	if err := q.SetConcurrencyLimit(netqueue.Unbounded); err != nil {
		t.Errorf("Unbounded: %v", err)
	}
}

func TestActivitySignal_OnePairPerBusyPeriod(t *testing.T) {
	q, rec := newQueue(t, netqueue.WithConcurrency(2))

	var order []string
	runs := make(chan string, 4)
	tasks := make([]task.Task, 4)
	for i := range tasks {
		name := fmt.Sprintf("t%d", i)
		tasks[i] = task.NewFunc(name, func(context.Context) error {
			runs <- name
			return nil
		})
	}

	if err := q.EnqueueBatch(context.Background(), tasks); err != nil {
		t.Fatalf("EnqueueBatch: %v", err)
	}
	if got := rec.Events(); len(got) == 0 || got[0] != "started" {
		t.Fatalf("ActivityStarted not emitted before Enqueue returned: %v", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := q.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	close(runs)
	for name := range runs {
		order = append(order, name)
	}

	waitFor(t, "activity stopped", func() bool { return len(rec.Events()) == 2 })
	if got := rec.Events(); !equalEvents(got, []string{"started", "stopped"}) {
		t.Errorf("events = %v, want one started/stopped pair", got)
	}
	if len(order) != 4 {
		t.Errorf("ran %d tasks, want 4", len(order))
	}

	// A second busy period gets its own pair.
	again := task.NewFunc("again", func(context.Context) error { return nil })
	if err := q.Enqueue(context.Background(), again); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	waitFor(t, "second pair", func() bool { return len(rec.Events()) == 4 })
	if got := rec.Events(); !equalEvents(got, []string{"started", "stopped", "started", "stopped"}) {
		t.Errorf("events = %v", got)
	}
}

func TestSetActivitySignal_KeepsObserversBalanced(t *testing.T) {
	q, rec := newQueue(t, netqueue.WithActivitySignal(false))

	release := make(chan struct{})
	f := blocker("f", release)
	if err := q.Enqueue(context.Background(), f); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if got := rec.Events(); len(got) != 0 {
		t.Fatalf("events with signal disabled: %v", got)
	}

	q.SetActivitySignal(true)
	q.SetActivitySignal(true)
	if got := rec.Events(); !equalEvents(got, []string{"started"}) {
		t.Fatalf("events after enabling = %v, want [started]", got)
	}

	q.SetActivitySignal(false)
	if got := rec.Events(); !equalEvents(got, []string{"started", "stopped"}) {
		t.Fatalf("events after disabling = %v", got)
	}

	close(release)
	waitDone(t, f)
	waitFor(t, "queue to empty", func() bool { return q.Len() == 0 })
	if got := rec.Events(); len(got) != 2 {
		t.Errorf("events after completion = %v, want no more", got)
	}
	if q.Config().ActivitySignal {
		t.Error("Config().ActivitySignal = true after disabling")
	}
}

// Limit 2, enqueue A, B, C together: A and B start, C waits; A finishes
// and C starts; B and C finish; one started/stopped pair in total.
func TestQueue_ThreeTasksLimitTwo(t *testing.T) {
	q, rec := newQueue(t, netqueue.WithConcurrency(2))

	relA, relB, relC := make(chan struct{}), make(chan struct{}), make(chan struct{})
	a, b, c := blocker("A", relA), blocker("B", relB), blocker("C", relC)

	if err := q.EnqueueBatch(context.Background(), []task.Task{a, b, c}); err != nil {
		t.Fatalf("EnqueueBatch: %v", err)
	}
	if got := rec.Events(); !equalEvents(got, []string{"started"}) {
		t.Fatalf("events = %v, want [started]", got)
	}
	waitFor(t, "A and B running", func() bool {
		return a.State() == task.StateRunning && b.State() == task.StateRunning
	})
	if c.State() != task.StatePending {
		t.Fatalf("C state = %s, want pending", c.State())
	}

	close(relA)
	waitDone(t, a)
	waitFor(t, "C running", func() bool { return c.State() == task.StateRunning })
	if q.Active() != 2 {
		t.Errorf("active = %d, want 2", q.Active())
	}
	if b.State() != task.StateRunning {
		t.Errorf("B state = %s, want running", b.State())
	}

	close(relB)
	close(relC)
	waitDone(t, b, c)
	waitFor(t, "activity stopped", func() bool { return len(rec.Events()) == 2 })
	if got := rec.Events(); !equalEvents(got, []string{"started", "stopped"}) {
		t.Errorf("events = %v", got)
	}
	for _, f := range []*task.Func{a, b, c} {
		if f.State() != task.StateCompleted {
			t.Errorf("%s state = %s, want completed", f.Name(), f.State())
		}
	}
}

func TestQueue_FIFOOrder(t *testing.T) {
	q, _ := newQueue(t, netqueue.WithConcurrency(1))

	order := make(chan string, 10)
	batch := make([]task.Task, 10)
	for i := range batch {
		name := fmt.Sprintf("t%02d", i)
		batch[i] = task.NewFunc(name, func(context.Context) error {
			order <- name
			return nil
		})
	}
	if err := q.EnqueueBatch(context.Background(), batch); err != nil {
		t.Fatalf("EnqueueBatch: %v", err)
	}

	for i := range batch {
		select {
		case got := <-order:
			if want := fmt.Sprintf("t%02d", i); got != want {
				t.Fatalf("run %d = %s, want %s", i, got, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("run %d did not happen", i)
		}
	}
}

func TestSetSuspended(t *testing.T) {
	q, _ := newQueue(t)

	q.SetSuspended(true)
	f := task.NewFunc("held", func(context.Context) error { return nil })
	if err := q.Enqueue(context.Background(), f); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if q.Active() != 0 || q.Pending() != 1 || !q.Suspended() {
		t.Fatalf("active=%d pending=%d suspended=%v", q.Active(), q.Pending(), q.Suspended())
	}

	q.SetSuspended(false)
	waitDone(t, f)
	if f.State() != task.StateCompleted {
		t.Errorf("state = %s, want completed", f.State())
	}
}

func TestKeyLimits_CapPerHost(t *testing.T) {
	q, _ := newQueue(t, netqueue.WithKeyLimits(limit.KeyConfig{Key: "slow.example.com", MaxConcurrency: 1}))

	release := make(chan struct{})
	defer close(release)

	slow1 := &keyedTask{Func: blocker("slow1", release), key: "slow.example.com"}
	slow2 := &keyedTask{Func: blocker("slow2", release), key: "slow.example.com"}
	fast := &keyedTask{Func: blocker("fast", release), key: "fast.example.com"}

	if err := q.EnqueueBatch(context.Background(), []task.Task{slow1, slow2, fast}); err != nil {
		t.Fatalf("EnqueueBatch: %v", err)
	}
	if q.Active() != 2 || q.Pending() != 1 {
		t.Fatalf("active=%d pending=%d, want 2/1", q.Active(), q.Pending())
	}
	if slow2.State() != task.StatePending {
		t.Errorf("slow2 state = %s, want pending", slow2.State())
	}
}

func TestSetKeyLimit(t *testing.T) {
	q, _ := newQueue(t)

	if err := q.SetKeyLimit(limit.KeyConfig{Key: "h", MaxConcurrency: 1}); err != nil {
		t.Fatalf("SetKeyLimit: %v", err)
	}

	release := make(chan struct{})
	defer close(release)
	a := &keyedTask{Func: blocker("a", release), key: "h"}
	b := &keyedTask{Func: blocker("b", release), key: "h"}
	if err := q.EnqueueBatch(context.Background(), []task.Task{a, b}); err != nil {
		t.Fatalf("EnqueueBatch: %v", err)
	}
	if q.Active() != 1 || q.Pending() != 1 || q.ActiveFor("h") != 1 {
		t.Fatalf("active=%d pending=%d key=%d, want 1/1/1", q.Active(), q.Pending(), q.ActiveFor("h"))
	}

	if err := q.SetKeyLimit(limit.KeyConfig{Key: "h", MaxConcurrency: 2}); err != nil {
		t.Fatalf("SetKeyLimit: %v", err)
	}
	if q.Active() != 2 || q.ActiveFor("h") != 2 {
		t.Errorf("active=%d key=%d after raising the key cap, want 2/2", q.Active(), q.ActiveFor("h"))
	}
}

func TestSetKeyLimit_Invalid(t *testing.T) {
	q, _ := newQueue(t)

	for _, cfg := range []limit.KeyConfig{
		{},
		{Key: "h", MaxConcurrency: -1},
		{Key: "h", RateLimit: -1},
	} {
		if err := q.SetKeyLimit(cfg); !errors.Is(err, netqueue.ErrInvalidKeyLimit) {
			t.Errorf("SetKeyLimit(%+v) = %v, want ErrInvalidKeyLimit", cfg, err)
		}
	}
}

func TestKeyLimits_RateLimitedKeyWakesUp(t *testing.T) {
	q, _ := newQueue(t, netqueue.WithKeyLimits(limit.KeyConfig{
		Key:       "api.example.com",
		RateLimit: 50,
		RateBurst: 1,
	}))

	fns := make([]*task.Func, 3)
	batch := make([]task.Task, 3)
	for i := range fns {
		fns[i] = task.NewFunc(fmt.Sprintf("r%d", i), func(context.Context) error { return nil })
		batch[i] = &keyedTask{Func: fns[i], key: "api.example.com"}
	}
	if err := q.EnqueueBatch(context.Background(), batch); err != nil {
		t.Fatalf("EnqueueBatch: %v", err)
	}
	if q.Pending() == 0 {
		t.Error("rate limit let every task start at once")
	}
	waitDone(t, fns...)
}

func TestClose(t *testing.T) {
	q, rec := newQueue(t)

	stuck := blocker("stuck", make(chan struct{}))
	if err := q.Enqueue(context.Background(), stuck); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := q.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if stuck.State() != task.StateCancelled {
		t.Errorf("state = %s, want cancelled", stuck.State())
	}
	if q.Len() != 0 {
		t.Errorf("len = %d after Close", q.Len())
	}
	if got := rec.Events(); !equalEvents(got, []string{"started", "stopped"}) {
		t.Errorf("events = %v", got)
	}

	late := task.NewFunc("late", func(context.Context) error { return nil })
	if err := q.Enqueue(context.Background(), late); !errors.Is(err, netqueue.ErrQueueClosed) {
		t.Errorf("err = %v, want ErrQueueClosed", err)
	}
	if err := q.Close(context.Background()); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestWait_ContextDone(t *testing.T) {
	q, _ := newQueue(t)

	release := make(chan struct{})
	defer close(release)
	if err := q.Enqueue(context.Background(), blocker("b", release)); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := q.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait = %v, want DeadlineExceeded", err)
	}
}

func TestIndicator_SharedAcrossQueues(t *testing.T) {
	var toggles []bool
	ind := activity.NewIndicator(func(visible bool) { toggles = append(toggles, visible) })

	uploads, _ := newQueue(t, netqueue.WithName("uploads"), netqueue.WithExtension(ind))
	feeds, _ := newQueue(t, netqueue.WithName("feeds"), netqueue.WithExtension(ind))

	relU, relF := make(chan struct{}), make(chan struct{})
	u, f := blocker("u", relU), blocker("f", relF)
	if err := uploads.Enqueue(context.Background(), u); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := feeds.Enqueue(context.Background(), f); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if ind.Busy() != 2 || !ind.Visible() {
		t.Fatalf("busy=%d visible=%v", ind.Busy(), ind.Visible())
	}

	close(relU)
	waitFor(t, "uploads idle", func() bool { return ind.Busy() == 1 })
	if !ind.Visible() {
		t.Error("indicator hidden while feeds busy")
	}

	close(relF)
	waitFor(t, "indicator hidden", func() bool { return !ind.Visible() })
	if len(toggles) != 2 || !toggles[0] || toggles[1] {
		t.Errorf("toggles = %v, want [true false]", toggles)
	}
}
