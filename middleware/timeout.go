package middleware

import (
	"context"

	"github.com/xraph/netqueue/task"
)

// Timeout puts a deadline on the run context when the task implements
// task.Timed with a positive duration.
func Timeout() Middleware {
	return func(ctx context.Context, _ string, t task.Task, next Handler) error {
		timed, ok := t.(task.Timed)
		if !ok || timed.Timeout() <= 0 {
			return next(ctx)
		}
		ctx, cancel := context.WithTimeout(ctx, timed.Timeout())
		defer cancel()
		return next(ctx)
	}
}
