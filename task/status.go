package task

import "sync"

// Status tracks the state of one task. It implements Tracker and Stateful
// and is safe for concurrent use. Embed a *Status to get State, Err and
// Done on a custom task.
type Status struct {
	mu    sync.Mutex
	state State
	err   error
	done  chan struct{}
}

// NewStatus returns a Status in StatePending.
func NewStatus() *Status {
	return &Status{state: StatePending, done: make(chan struct{})}
}

// Track implements Tracker. Transitions after a terminal state are ignored.
func (s *Status) Track(state State, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Terminal() {
		return
	}
	s.state = state
	if state.Terminal() {
		s.err = err
		close(s.done)
	}
}

// State implements Stateful.
func (s *Status) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the error Run returned, once terminal.
func (s *Status) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Done is closed when the task reaches a terminal state.
func (s *Status) Done() <-chan struct{} { return s.done }
