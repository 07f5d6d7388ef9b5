package limit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Unbounded disables the queue-wide concurrency limit.
const Unbounded = -1

// Valid reports whether n is an acceptable queue-wide limit.
func Valid(n int) bool { return n >= 1 || n == Unbounded }

// KeyConfig limits the tasks sharing one key.
type KeyConfig struct {
	// Key is matched against task.KeyOf.
	Key string

	// MaxConcurrency caps simultaneous tasks for the key. Zero means no
	// key-specific cap.
	MaxConcurrency int

	// RateLimit is the sustained starts per second. Zero disables it.
	RateLimit float64

	// RateBurst is the token-bucket size. Defaults to 1 when RateLimit is
	// set.
	RateBurst int
}

type keyState struct {
	config  KeyConfig
	limiter *rate.Limiter
	active  int
}

func newKeyState(cfg KeyConfig) *keyState {
	ks := &keyState{config: cfg}
	if cfg.RateLimit > 0 {
		burst := max(cfg.RateBurst, 1)
		ks.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return ks
}

// Manager tracks active slots. It is safe for concurrent use.
type Manager struct {
	mu     sync.Mutex
	limit  int
	active int
	keys   map[string]*keyState
}

// NewManager creates a Manager with the queue-wide limit n and optional
// per-key configs. An invalid n is treated as Unbounded.
func NewManager(n int, configs ...KeyConfig) *Manager {
	if !Valid(n) {
		n = Unbounded
	}
	m := &Manager{
		limit: n,
		keys:  make(map[string]*keyState, len(configs)),
	}
	for _, cfg := range configs {
		m.keys[cfg.Key] = newKeyState(cfg)
	}
	return m
}

// SetLimit changes the queue-wide limit. Slots already held are kept even
// when they exceed the new limit. Invalid values are ignored and reported
// as false.
func (m *Manager) SetLimit(n int) bool {
	if !Valid(n) {
		return false
	}
	m.mu.Lock()
	m.limit = n
	m.mu.Unlock()
	return true
}

// Limit returns the queue-wide limit.
func (m *Manager) Limit() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.limit
}

// Full reports whether no queue-wide slot is free.
func (m *Manager) Full() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fullLocked()
}

func (m *Manager) fullLocked() bool {
	return m.limit != Unbounded && m.active >= m.limit
}

// Acquire takes a slot for key. When it fails because key is rate limited,
// retryAfter is the time until a token is available; otherwise it is zero
// and a slot frees up only through Release or SetLimit.
func (m *Manager) Acquire(key string) (ok bool, retryAfter time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fullLocked() {
		return false, 0
	}

	ks := m.keys[key]
	if ks != nil {
		if ks.config.MaxConcurrency > 0 && ks.active >= ks.config.MaxConcurrency {
			return false, 0
		}
		if ks.limiter != nil {
			r := ks.limiter.Reserve()
			if d := r.Delay(); d > 0 {
				r.Cancel()
				return false, d
			}
		}
		ks.active++
	}

	m.active++
	return true, 0
}

// Release returns the slot taken by Acquire for key.
func (m *Manager) Release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active > 0 {
		m.active--
	}
	if ks := m.keys[key]; ks != nil && ks.active > 0 {
		ks.active--
	}
}

// Active returns the number of held slots.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// KeyActive returns the number of slots held for key. Unconfigured keys
// always report zero.
func (m *Manager) KeyActive(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ks := m.keys[key]; ks != nil {
		return ks.active
	}
	return 0
}

// SetKeyConfig adds or replaces the config for cfg.Key, keeping the
// key's current active count.
func (m *Manager) SetKeyConfig(cfg KeyConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ks := newKeyState(cfg)
	if existing := m.keys[cfg.Key]; existing != nil {
		ks.active = existing.active
	}
	m.keys[cfg.Key] = ks
}
