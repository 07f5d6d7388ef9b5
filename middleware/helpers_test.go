package middleware_test

import (
	"context"
	"time"

	"github.com/xraph/netqueue/id"
)

// probeTask implements task.Task and every optional capability the
// middleware look for.
type probeTask struct {
	id      id.TaskID
	name    string
	key     string
	appID   string
	orgID   string
	timeout time.Duration
}

func newProbeTask() *probeTask {
	return &probeTask{
		id:    id.NewRequestID(),
		name:  "GET /users",
		key:   "api.example.com",
		appID: "app_123",
		orgID: "org_456",
	}
}

func (p *probeTask) ID() id.TaskID { return p.id }
func (p *probeTask) Name() string { return p.name }
func (p *probeTask) Run(_ context.Context) error { return nil }
func (p *probeTask) Key() string { return p.key }
func (p *probeTask) ScopeAppID() string { return p.appID }
func (p *probeTask) ScopeOrgID() string { return p.orgID }
func (p *probeTask) Timeout() time.Duration { return p.timeout }
