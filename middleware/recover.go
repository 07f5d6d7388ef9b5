package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/xraph/netqueue/task"
)

// Recover converts a panic in the chain into an error and logs the stack.
func Recover(logger *slog.Logger) Middleware {
	return func(ctx context.Context, queue string, t task.Task, next Handler) (retErr error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			logger.Error("task panicked",
				slog.String("queue", queue),
				slog.String("task_id", t.ID().String()),
				slog.String("task_name", t.Name()),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
			retErr = fmt.Errorf("panic in task %s: %v", t.Name(), r)
		}()
		return next(ctx)
	}
}
