// Package scope carries multi-tenant identity (forge app and org IDs)
// from where a task is built to the goroutine that runs it.
//
// The run context inherits the values of whatever context enqueued the
// task, which is not always the one that built it (batches assembled in
// one request and flushed by another, for example). A task captures the
// scope when it is built and the Scope middleware puts it back.
package scope

import (
	"context"

	"github.com/xraph/forge"
)

// Scope is the app/org pair of a forge scope, detached from any context.
type Scope struct {
	AppID string
	OrgID string
}

// Capture reads the forge scope from ctx. The zero Scope is returned when
// ctx carries none.
func Capture(ctx context.Context) Scope {
	s, ok := forge.ScopeFrom(ctx)
	if !ok {
		return Scope{}
	}
	return Scope{AppID: s.AppID(), OrgID: s.OrgID()}
}

// IsZero reports whether s names neither an app nor an org.
func (s Scope) IsZero() bool { return s.AppID == "" && s.OrgID == "" }

// Apply returns ctx carrying s as a forge scope. A zero Scope leaves ctx
// untouched.
func (s Scope) Apply(ctx context.Context) context.Context {
	if s.IsZero() {
		return ctx
	}
	if s.OrgID != "" {
		return forge.WithScope(ctx, forge.NewOrgScope(s.AppID, s.OrgID))
	}
	return forge.WithScope(ctx, forge.NewAppScope(s.AppID))
}
