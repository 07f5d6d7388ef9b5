// Package api exposes a queue's controls over HTTP as Forge routes.
package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/netqueue"
)

// API wires the queue handlers into a Forge router.
type API struct {
	queue  *netqueue.Queue
	router forge.Router
}

// New creates an API for q.
func New(q *netqueue.Queue, router forge.Router) *API {
	return &API{queue: q, router: router}
}

// Handler returns an http.Handler serving every route.
func (a *API) Handler() http.Handler {
	if a.router == nil {
		a.router = forge.NewRouter()
	}
	a.RegisterRoutes(a.router)
	return a.router.Handler()
}

// RegisterRoutes registers the queue routes on router.
func (a *API) RegisterRoutes(router forge.Router) {
	a.registerQueueRoutes(router)
	a.registerTaskRoutes(router)
}

func (a *API) registerQueueRoutes(router forge.Router) {
	g := router.Group("/v1", forge.WithGroupTags("queue"))

	_ = g.GET("/queue", a.stats,
		forge.WithSummary("Queue stats"),
		forge.WithDescription("Returns the queue's counts, limit and flags."),
		forge.WithOperationID("queueStats"),
		forge.WithResponseSchema(http.StatusOK, "Queue stats", StatsResponse{}),
		forge.WithErrorResponses(),
	)

	_ = g.POST("/queue/cancel", a.cancelAll,
		forge.WithSummary("Cancel all tasks"),
		forge.WithDescription("Drops pending tasks and cancels running ones."),
		forge.WithOperationID("cancelAll"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	)

	_ = g.POST("/queue/concurrency/:limit", a.setConcurrency,
		forge.WithSummary("Set concurrency limit"),
		forge.WithDescription("Sets the queue-wide limit. Use -1 for unbounded."),
		forge.WithOperationID("setConcurrency"),
		forge.WithResponseSchema(http.StatusOK, "Queue stats", StatsResponse{}),
		forge.WithErrorResponses(),
	)

	_ = g.POST("/queue/suspend", a.suspend,
		forge.WithSummary("Suspend queue"),
		forge.WithDescription("Stops starting pending tasks."),
		forge.WithOperationID("suspendQueue"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	)

	_ = g.POST("/queue/resume", a.resume,
		forge.WithSummary("Resume queue"),
		forge.WithDescription("Resumes starting pending tasks."),
		forge.WithOperationID("resumeQueue"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	)
}

func (a *API) registerTaskRoutes(router forge.Router) {
	g := router.Group("/v1", forge.WithGroupTags("tasks"))

	_ = g.POST("/tasks/:taskId/cancel", a.cancelTask,
		forge.WithSummary("Cancel task"),
		forge.WithDescription("Cancels one pending or running task."),
		forge.WithOperationID("cancelTask"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	)
}
