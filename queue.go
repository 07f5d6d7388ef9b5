package netqueue

import (
	"container/list"
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/xraph/netqueue/ext"
	"github.com/xraph/netqueue/id"
	"github.com/xraph/netqueue/limit"
	"github.com/xraph/netqueue/middleware"
	"github.com/xraph/netqueue/task"
	"github.com/xraph/netqueue/worker"
)

const instrumentationName = "github.com/xraph/netqueue"

// entry is a task held by the queue, pending or running.
type entry struct {
	task task.Task
	key  string

	// ctx carries the enqueue context's values without its deadline or
	// cancellation. Once running it is the run context.
	ctx context.Context

	// elem is set while pending.
	elem *list.Element

	// cancel is set once the task is running.
	cancel context.CancelFunc
}

// Queue runs tasks with bounded concurrency.
//
// All bookkeeping is serialized by one mutex. Tasks run on their own
// goroutines outside it. Activity hooks are emitted with the mutex held so
// observers see transitions in order; they must not call back into the
// queue. Task hooks run after the mutex is released.
type Queue struct {
	id     QueueID
	config Config
	logger *slog.Logger

	exts           []ext.Extension
	mws            []middleware.Middleware
	keyLimits      []limit.KeyConfig
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider

	extensions *ext.Registry
	executor   *worker.Executor
	slots      *limit.Manager

	mu        sync.Mutex
	pending   *list.List
	entries   map[string]*entry
	signal    bool
	signalled bool
	suspended bool
	closed    bool
	idle      chan struct{}

	wake      *time.Timer
	wakeArmed bool
	wakeAt    time.Time
}

// New creates a Queue with the given options.
func New(opts ...Option) (*Queue, error) {
	q := &Queue{
		id:      id.NewQueueID(),
		config:  DefaultConfig(),
		logger:  slog.Default(),
		pending: list.New(),
		entries: make(map[string]*entry),
		idle:    make(chan struct{}),
	}
	close(q.idle)

	for _, opt := range opts {
		if err := opt(q); err != nil {
			return nil, fmt.Errorf("netqueue: apply option: %w", err)
		}
	}
	if q.config.Name == "" {
		q.config.Name = DefaultConfig().Name
	}

	q.extensions = ext.NewRegistry(q.logger)
	for _, e := range q.exts {
		q.extensions.Register(e)
	}
	q.slots = limit.NewManager(q.config.Concurrency, q.keyLimits...)
	q.signal = q.config.ActivitySignal
	q.executor = worker.NewExecutor(q.config.Name, q.extensions, q.logger, q.middlewares()...)

	return q, nil
}

// middlewares returns the built-in chain followed by user middleware.
func (q *Queue) middlewares() []middleware.Middleware {
	tracing := middleware.Tracing()
	if q.tracerProvider != nil {
		tracing = middleware.TracingWithTracer(q.tracerProvider.Tracer(instrumentationName))
	}
	metrics := middleware.Metrics()
	if q.meterProvider != nil {
		metrics = middleware.MetricsWithMeter(q.meterProvider.Meter(instrumentationName))
	}

	mws := []middleware.Middleware{
		middleware.Recover(q.logger),
		tracing,
		metrics,
		middleware.Logging(q.logger),
		middleware.Scope(),
		middleware.Timeout(),
	}
	return append(mws, q.mws...)
}

// Enqueue adds t to the queue. It starts immediately if a slot is free.
//
// Enqueue fails without changing the queue if t is nil, has no ID, is
// already queued, is running elsewhere, has already finished, or the
// queue is closed. Errors
// returned by the task itself are never reported here.
//
// ctx is used for extension hooks, and its values (trace, scope) are
// carried into the run context. Its cancellation does not affect the task.
func (q *Queue) Enqueue(ctx context.Context, t task.Task) error {
	return q.admit(ctx, []task.Task{t}, false)
}

// EnqueueBatch adds ts in order as if by Enqueue, under one lock
// acquisition, so the queue emits at most one ActivityStarted for the
// whole batch. Either every task is admitted or none is; the error names
// the first offending index. An empty batch is a no-op.
func (q *Queue) EnqueueBatch(ctx context.Context, ts []task.Task) error {
	return q.admit(ctx, ts, true)
}

func (q *Queue) admit(ctx context.Context, ts []task.Task, batch bool) error {
	if len(ts) == 0 {
		return nil
	}

	started, err := q.admitEntries(ctx, ts, batch)
	if err != nil {
		return err
	}
	defer q.launch(started)

	for _, t := range ts {
		q.extensions.EmitTaskEnqueued(ctx, q.config.Name, t)
	}
	return nil
}

// admitEntries validates ts and moves them onto the pending list. Nothing
// is admitted if any task is rejected.
func (q *Queue) admitEntries(ctx context.Context, ts []task.Task, batch bool) ([]*entry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil, ErrQueueClosed
	}

	seen := make(map[string]struct{}, len(ts))
	for i, t := range ts {
		if err := q.validateLocked(t, seen); err != nil {
			if batch {
				return nil, fmt.Errorf("netqueue: batch index %d: %w", i, err)
			}
			return nil, err
		}
	}

	if len(q.entries) == 0 {
		q.idle = make(chan struct{})
	}
	base := context.WithoutCancel(ctx)
	for _, t := range ts {
		e := &entry{task: t, key: task.KeyOf(t), ctx: base}
		e.elem = q.pending.PushBack(e)
		q.entries[t.ID().String()] = e
	}

	return q.dispatchLocked(ctx), nil
}

func (q *Queue) validateLocked(t task.Task, seen map[string]struct{}) error {
	if isNil(t) {
		return ErrNilTask
	}
	tid := t.ID()
	if tid.IsNil() {
		return fmt.Errorf("%w: %s", ErrMissingTaskID, t.Name())
	}
	key := tid.String()
	if _, ok := q.entries[key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateTask, key)
	}
	if _, ok := seen[key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateTask, key)
	}
	if st, ok := t.(task.Stateful); ok {
		switch state := st.State(); {
		case state.Terminal():
			return fmt.Errorf("%w: %s is %s", ErrTaskFinished, key, state)
		case state == task.StateRunning:
			return fmt.Errorf("%w: %s", ErrTaskRunning, key)
		}
	}
	seen[key] = struct{}{}
	return nil
}

// isNil reports whether t is nil or a nil pointer wrapped in the interface.
func isNil(t task.Task) bool {
	if t == nil {
		return true
	}
	v := reflect.ValueOf(t)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// dispatchLocked starts pending tasks in FIFO order while the limiter
// admits them and returns the ones to launch. Tasks whose key is blocked
// are skipped and keep their place.
func (q *Queue) dispatchLocked(ctx context.Context) []*entry {
	if q.suspended {
		return nil
	}

	var (
		started []*entry
		wait    time.Duration
	)
	for el := q.pending.Front(); el != nil && !q.slots.Full(); {
		next := el.Next()
		e := el.Value.(*entry) //nolint:errcheck // list only holds *entry

		ok, retryAfter := q.slots.Acquire(e.key)
		switch {
		case ok:
			q.pending.Remove(el)
			e.elem = nil
			e.ctx, e.cancel = context.WithCancel(e.ctx)
			started = append(started, e)
		case retryAfter > 0 && (wait == 0 || retryAfter < wait):
			wait = retryAfter
		}
		el = next
	}

	if wait > 0 {
		q.armWakeLocked(wait)
	}
	if len(started) > 0 {
		q.signalStartedLocked(ctx)
	}
	return started
}

// armWakeLocked schedules a dispatch after d unless an earlier one is
// already scheduled.
func (q *Queue) armWakeLocked(d time.Duration) {
	at := time.Now().Add(d)
	if q.wakeArmed && !at.Before(q.wakeAt) {
		return
	}
	if q.wake == nil {
		q.wake = time.AfterFunc(d, q.onWake)
	} else {
		q.wake.Reset(d)
	}
	q.wakeArmed = true
	q.wakeAt = at
}

func (q *Queue) onWake() {
	q.update(func() []*entry {
		q.wakeArmed = false
		return q.dispatchLocked(context.Background())
	})
}

// update runs fn with the mutex held and launches the tasks it returns
// once the mutex is released.
func (q *Queue) update(fn func() []*entry) {
	var started []*entry
	func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		started = fn()
	}()
	q.launch(started)
}

func (q *Queue) launch(started []*entry) {
	for _, e := range started {
		go q.run(e)
	}
}

func (q *Queue) run(e *entry) {
	out := q.executor.Execute(e.ctx, e.task)
	e.cancel()
	q.finish(e, out)
}

// finish releases e's slot and lets the next pending task start.
func (q *Queue) finish(e *entry, out worker.Outcome) {
	ctx := context.Background()

	q.logger.Debug("task finished",
		slog.String("queue", q.config.Name),
		slog.String("task_id", e.task.ID().String()),
		slog.String("state", string(out.State)),
		slog.Duration("elapsed", out.Elapsed),
	)

	q.update(func() []*entry {
		delete(q.entries, e.task.ID().String())
		q.slots.Release(e.key)
		started := q.dispatchLocked(ctx)
		if q.slots.Active() == 0 {
			q.signalStoppedLocked(ctx)
		}
		q.closeIdleLocked()
		return started
	})
}

func (q *Queue) signalStartedLocked(ctx context.Context) {
	if !q.signal || q.signalled || q.slots.Active() == 0 {
		return
	}
	q.signalled = true
	q.logger.Debug("queue active", slog.String("queue", q.config.Name))
	q.extensions.EmitActivityStarted(ctx, q.config.Name)
}

func (q *Queue) signalStoppedLocked(ctx context.Context) {
	if !q.signalled {
		return
	}
	q.signalled = false
	q.logger.Debug("queue idle", slog.String("queue", q.config.Name))
	q.extensions.EmitActivityStopped(ctx, q.config.Name)
}

func (q *Queue) closeIdleLocked() {
	if len(q.entries) != 0 {
		return
	}
	select {
	case <-q.idle:
	default:
		close(q.idle)
	}
}

// CancelAll drops every pending task without running it and cancels the
// context of every running one. It does not wait for running tasks to
// return. Calling it on an empty queue does nothing.
func (q *Queue) CancelAll() {
	ctx := context.Background()
	for _, t := range q.dropAll() {
		q.executor.NotifyCancelled(ctx, t)
	}
}

// dropAll empties the pending list and cancels running tasks. It
// returns the dropped tasks so their hooks run outside the mutex.
func (q *Queue) dropAll() []task.Task {
	q.mu.Lock()
	defer q.mu.Unlock()

	dropped := make([]task.Task, 0, q.pending.Len())
	for el := q.pending.Front(); el != nil; el = el.Next() {
		e := el.Value.(*entry) //nolint:errcheck // list only holds *entry
		e.elem = nil
		delete(q.entries, e.task.ID().String())
		q.executor.MarkCancelled(e.task)
		dropped = append(dropped, e.task)
	}
	q.pending.Init()

	for _, e := range q.entries {
		e.cancel()
	}

	if len(dropped) > 0 || len(q.entries) > 0 {
		q.logger.Debug("cancelled all tasks",
			slog.String("queue", q.config.Name),
			slog.Int("pending", len(dropped)),
			slog.Int("running", len(q.entries)),
		)
	}
	q.closeIdleLocked()
	return dropped
}

// Cancel cancels one queued task. A pending task is dropped without
// running; a running task has its context cancelled.
func (q *Queue) Cancel(taskID TaskID) error {
	dropped, err := q.dropTask(taskID.String())
	if dropped != nil {
		q.executor.NotifyCancelled(context.Background(), dropped)
	}
	return err
}

// dropTask returns the task it dropped from the pending list, if any.
func (q *Queue) dropTask(key string) (task.Task, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	e, ok := q.entries[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, key)
	}
	if e.elem == nil {
		e.cancel()
		return nil, nil
	}

	q.pending.Remove(e.elem)
	e.elem = nil
	delete(q.entries, key)
	q.executor.MarkCancelled(e.task)
	q.closeIdleLocked()
	return e.task, nil
}

// SetConcurrencyLimit changes how many tasks may run at once: n must be
// positive or Unbounded. Running tasks are never stopped; a lower limit
// only holds back pending tasks until enough running ones finish, and a
// higher one starts pending tasks right away.
func (q *Queue) SetConcurrencyLimit(n int) error {
	if !limit.Valid(n) {
		return invalidConcurrency(n)
	}
	q.update(func() []*entry {
		q.slots.SetLimit(n)
		q.config.Concurrency = n
		return q.dispatchLocked(context.Background())
	})
	return nil
}

// SetKeyLimit adds or replaces the limits for cfg.Key. Tasks already
// running under the key keep their slots; pending ones are re-examined
// right away.
func (q *Queue) SetKeyLimit(cfg limit.KeyConfig) error {
	if cfg.Key == "" || cfg.MaxConcurrency < 0 || cfg.RateLimit < 0 || cfg.RateBurst < 0 {
		return fmt.Errorf("%w: %+v", ErrInvalidKeyLimit, cfg)
	}
	q.update(func() []*entry {
		q.slots.SetKeyConfig(cfg)
		return q.dispatchLocked(context.Background())
	})
	return nil
}

// ActiveFor returns the number of running tasks under a limited key.
// Keys without limits always report zero.
func (q *Queue) ActiveFor(key string) int { return q.slots.KeyActive(key) }

func invalidConcurrency(n int) error {
	return fmt.Errorf("%w: %d", ErrInvalidConcurrency, n)
}

// SetActivitySignal turns activity hooks on or off. Scheduling is not
// affected. Observers stay balanced: turning the signal off while it is
// raised emits ActivityStopped, and turning it on while tasks run emits
// ActivityStarted.
func (q *Queue) SetActivitySignal(enabled bool) {
	ctx := context.Background()

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.signal == enabled {
		return
	}
	q.signal = enabled
	q.config.ActivitySignal = enabled
	if enabled {
		q.signalStartedLocked(ctx)
	} else {
		q.signalStoppedLocked(ctx)
	}
}

// SetSuspended pauses or resumes starting pending tasks. Running tasks are
// not affected.
func (q *Queue) SetSuspended(suspended bool) {
	q.update(func() []*entry {
		q.suspended = suspended
		if suspended {
			return nil
		}
		return q.dispatchLocked(context.Background())
	})
}

// Wait blocks until the queue holds no tasks or ctx is done.
func (q *Queue) Wait(ctx context.Context) error {
	q.mu.Lock()
	idle := q.idle
	q.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops admitting tasks and waits for queued ones to finish. If ctx
// ends first, everything left is cancelled and Close waits for running
// tasks to return. When ctx has no deadline, Config.ShutdownTimeout bounds
// the wait. Closing twice is a no-op.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	idle := q.idle
	q.mu.Unlock()

	if _, ok := ctx.Deadline(); !ok && q.config.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.config.ShutdownTimeout)
		defer cancel()
	}

	q.logger.Info("queue closing",
		slog.String("queue", q.config.Name),
		slog.Int("tasks", q.Len()),
	)

	select {
	case <-idle:
	case <-ctx.Done():
		q.logger.Warn("queue close timed out, cancelling remaining tasks",
			slog.String("queue", q.config.Name),
		)
		q.CancelAll()
		<-idle
	}

	q.mu.Lock()
	if q.wake != nil {
		q.wake.Stop()
		q.wakeArmed = false
	}
	q.mu.Unlock()

	q.extensions.EmitShutdown(context.WithoutCancel(ctx), q.config.Name)
	q.logger.Info("queue closed", slog.String("queue", q.config.Name))
	return nil
}

// ID returns the queue ID.
func (q *Queue) ID() QueueID { return q.id }

// Name returns the queue name.
func (q *Queue) Name() string { return q.config.Name }

// Config returns the current configuration.
func (q *Queue) Config() Config {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.config
}

// Extensions returns the queue's extension registry.
func (q *Queue) Extensions() *ext.Registry { return q.extensions }

// Len returns the number of queued tasks, pending and running.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Pending returns the number of tasks waiting to start.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending.Len()
}

// Active returns the number of running tasks.
func (q *Queue) Active() int { return q.slots.Active() }

// ConcurrencyLimit returns the current limit, possibly Unbounded.
func (q *Queue) ConcurrencyLimit() int { return q.slots.Limit() }

// ActivitySignal reports whether activity hooks are enabled.
func (q *Queue) ActivitySignal() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.signal
}

// Suspended reports whether the queue is suspended.
func (q *Queue) Suspended() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.suspended
}

// Closed reports whether Close has been called.
func (q *Queue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
