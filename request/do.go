package request

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/xraph/netqueue/task"
)

// Enqueuer admits a batch of tasks. *netqueue.Queue implements it.
type Enqueuer interface {
	EnqueueBatch(ctx context.Context, ts []task.Task) error
}

// Do enqueues ops as one batch and waits until all of them finish or ctx
// is done. It returns the first operation error. Operations keep running
// in the queue if Do returns early.
func Do(ctx context.Context, q Enqueuer, ops ...*Operation) error {
	batch := make([]task.Task, len(ops))
	for i, op := range ops {
		if op != nil {
			batch[i] = op
		}
	}
	if err := q.EnqueueBatch(ctx, batch); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, op := range ops {
		g.Go(func() error {
			select {
			case <-op.Done():
				return op.Err()
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}
	return g.Wait()
}
