// Package activity drives a network activity indicator from queue
// activity hooks.
//
// A process typically has a single indicator (a spinner, a status-bar
// icon) but several queues. Register the same [Indicator] with each
// queue; it stays visible while any of them is busy.
//
//	ind := activity.NewIndicator(func(visible bool) { ui.SetNetworkActivity(visible) })
//	uploads, _ := netqueue.New(netqueue.WithName("uploads"), netqueue.WithExtension(ind))
//	feeds, _ := netqueue.New(netqueue.WithName("feeds"), netqueue.WithExtension(ind))
package activity

import (
	"context"
	"errors"
	"sync"

	"github.com/xraph/netqueue/ext"
)

var (
	_ ext.ActivityStarted = (*Indicator)(nil)
	_ ext.ActivityStopped = (*Indicator)(nil)
)

// ErrUnbalanced is returned when a stop arrives with no matching start.
var ErrUnbalanced = errors.New("activity: stop without matching start")

// Indicator reference-counts busy queues and calls toggle on the first
// start and the last stop.
type Indicator struct {
	mu     sync.Mutex
	busy   map[string]int
	count  int
	toggle func(visible bool)
}

// NewIndicator creates an Indicator. toggle is called with the indicator
// lock held, so calls never interleave.
func NewIndicator(toggle func(visible bool)) *Indicator {
	return &Indicator{busy: make(map[string]int), toggle: toggle}
}

// Name implements ext.Extension.
func (i *Indicator) Name() string { return "activity-indicator" }

// OnActivityStarted implements ext.ActivityStarted.
func (i *Indicator) OnActivityStarted(_ context.Context, queue string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.busy[queue]++
	i.count++
	if i.count == 1 && i.toggle != nil {
		i.toggle(true)
	}
	return nil
}

// OnActivityStopped implements ext.ActivityStopped.
func (i *Indicator) OnActivityStopped(_ context.Context, queue string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.busy[queue] == 0 {
		return ErrUnbalanced
	}
	i.busy[queue]--
	if i.busy[queue] == 0 {
		delete(i.busy, queue)
	}
	i.count--
	if i.count == 0 && i.toggle != nil {
		i.toggle(false)
	}
	return nil
}

// Visible reports whether any queue is busy.
func (i *Indicator) Visible() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.count > 0
}

// Busy returns the number of busy queues.
func (i *Indicator) Busy() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.busy)
}
