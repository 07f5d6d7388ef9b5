package middleware

import (
	"context"

	"github.com/xraph/netqueue/scope"
	"github.com/xraph/netqueue/task"
)

// Scope restores the forge scope of a task.Scoped task onto the run
// context.
func Scope() Middleware {
	return func(ctx context.Context, _ string, t task.Task, next Handler) error {
		if s, ok := t.(task.Scoped); ok {
			ctx = scope.Scope{AppID: s.ScopeAppID(), OrgID: s.ScopeOrgID()}.Apply(ctx)
		}
		return next(ctx)
	}
}
