package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/xraph/forge"

	"github.com/xraph/netqueue"
	"github.com/xraph/netqueue/id"
)

func (a *API) snapshot() StatsResponse {
	q := a.queue
	return StatsResponse{
		ID:             q.ID().String(),
		Name:           q.Name(),
		Tasks:          q.Len(),
		Pending:        q.Pending(),
		Active:         q.Active(),
		Concurrency:    q.ConcurrencyLimit(),
		ActivitySignal: q.ActivitySignal(),
		Suspended:      q.Suspended(),
		Closed:         q.Closed(),
	}
}

func (a *API) stats(ctx forge.Context) error {
	return ctx.JSON(http.StatusOK, a.snapshot())
}

func (a *API) cancelAll(ctx forge.Context) error {
	a.queue.CancelAll()
	return ctx.NoContent(http.StatusNoContent)
}

func (a *API) setConcurrency(ctx forge.Context) error {
	n, err := strconv.Atoi(ctx.Param("limit"))
	if err != nil {
		return forge.BadRequest(fmt.Sprintf("invalid limit: %v", err))
	}
	if err := a.queue.SetConcurrencyLimit(n); err != nil {
		if errors.Is(err, netqueue.ErrInvalidConcurrency) {
			return forge.BadRequest(err.Error())
		}
		return err
	}
	return ctx.JSON(http.StatusOK, a.snapshot())
}

func (a *API) suspend(ctx forge.Context) error {
	a.queue.SetSuspended(true)
	return ctx.NoContent(http.StatusNoContent)
}

func (a *API) resume(ctx forge.Context) error {
	a.queue.SetSuspended(false)
	return ctx.NoContent(http.StatusNoContent)
}

func (a *API) cancelTask(ctx forge.Context) error {
	taskID, err := id.ParseTaskID(ctx.Param("taskId"))
	if err != nil {
		return forge.BadRequest(fmt.Sprintf("invalid task ID: %v", err))
	}
	if err := a.queue.Cancel(taskID); err != nil {
		if errors.Is(err, netqueue.ErrTaskNotFound) {
			return forge.NotFound(err.Error())
		}
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
