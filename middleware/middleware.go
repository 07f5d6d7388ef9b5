package middleware

import (
	"context"

	"github.com/xraph/netqueue/task"
)

// Handler is the terminal function, normally the task's Run method.
type Handler func(ctx context.Context) error

// Middleware wraps a Handler with cross-cutting logic. queue is the name
// of the queue running the task.
type Middleware func(ctx context.Context, queue string, t task.Task, next Handler) error

// Chain composes mws into one Middleware, outermost first.
//
//	Chain(logging, recover, scope) runs as logging → recover → scope → handler
func Chain(mws ...Middleware) Middleware {
	return func(ctx context.Context, queue string, t task.Task, next Handler) error {
		h := next
		for i := len(mws) - 1; i >= 0; i-- {
			mw := mws[i]
			inner := h
			h = func(ctx context.Context) error {
				return mw(ctx, queue, t, inner)
			}
		}
		return h(ctx)
	}
}
