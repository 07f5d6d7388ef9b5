package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/xraph/netqueue/task"
)

// Logging logs each run at Debug on start and at Info (or Warn on error)
// when Run returns.
func Logging(logger *slog.Logger) Middleware {
	return func(ctx context.Context, queue string, t task.Task, next Handler) error {
		logger.Debug("task running",
			slog.String("queue", queue),
			slog.String("task_id", t.ID().String()),
			slog.String("task_name", t.Name()),
		)

		start := time.Now()
		err := next(ctx)
		elapsed := time.Since(start)

		if err != nil {
			logger.Warn("task returned error",
				slog.String("queue", queue),
				slog.String("task_id", t.ID().String()),
				slog.String("task_name", t.Name()),
				slog.Duration("elapsed", elapsed),
				slog.String("error", err.Error()),
			)
			return err
		}

		logger.Info("task finished",
			slog.String("queue", queue),
			slog.String("task_id", t.ID().String()),
			slog.String("task_name", t.Name()),
			slog.Duration("elapsed", elapsed),
		)
		return nil
	}
}
