package task

import (
	"context"

	"github.com/xraph/netqueue/id"
)

// Func adapts a function into a Task with its own Status.
type Func struct {
	*Status

	id   id.TaskID
	name string
	fn   func(ctx context.Context) error
}

// NewFunc wraps fn as a task named name.
func NewFunc(name string, fn func(ctx context.Context) error) *Func {
	return &Func{
		Status: NewStatus(),
		id:     id.NewTaskID(),
		name:   name,
		fn:     fn,
	}
}

// ID implements Task.
func (f *Func) ID() id.TaskID { return f.id }

// Name implements Task.
func (f *Func) Name() string { return f.name }

// Run implements Task.
func (f *Func) Run(ctx context.Context) error { return f.fn(ctx) }
