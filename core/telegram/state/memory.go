package state

import (
	"sync"
	"time"
)

// Option customises a Manager.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source used for UpdatedAt and Sweep.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// Manager is an in-memory session store keyed by user id.
// Get returns copies; callers write changes back with Put.
type Manager[T any] struct {
	now func() time.Time

	mu       sync.RWMutex
	sessions map[int64]Session[T]

	locksMu sync.Mutex
	locks   map[int64]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

// NewManager constructs an empty Manager.
func NewManager[T any](opts ...Option) *Manager[T] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Manager[T]{
		now:      o.now,
		sessions: make(map[int64]Session[T]),
		locks:    make(map[int64]*userLock),
	}
}

// Get returns the session of a user, or an idle session when none exists.
func (m *Manager[T]) Get(userID int64) Session[T] {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[userID]; ok {
		return s
	}
	return Session[T]{State: StateIdle}
}

// Put stores the session and stamps UpdatedAt. An idle session is removed instead.
func (m *Manager[T]) Put(userID int64, s Session[T]) {
	if !s.Active() {
		m.Clear(userID)
		return
	}
	s.UpdatedAt = m.now()
	m.mu.Lock()
	m.sessions[userID] = s
	m.mu.Unlock()
}

// Clear removes the session of a user.
func (m *Manager[T]) Clear(userID int64) {
	m.mu.Lock()
	delete(m.sessions, userID)
	m.mu.Unlock()
}

// InProgress reports whether the user is inside a flow.
func (m *Manager[T]) InProgress(userID int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	return ok && s.Active()
}

// Len returns the number of stored sessions.
func (m *Manager[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep drops sessions not updated within idle and returns how many were removed.
// Users currently holding their lock are skipped.
func (m *Manager[T]) Sweep(idle time.Duration) int {
	if idle <= 0 {
		return 0
	}
	cutoff := m.now().Add(-idle)

	m.locksMu.Lock()
	busy := make(map[int64]struct{}, len(m.locks))
	for id := range m.locks {
		busy[id] = struct{}{}
	}
	m.locksMu.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if _, ok := busy[id]; ok {
			continue
		}
		if s.UpdatedAt.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Lock serialises work for one user and returns the matching unlock function.
// Different users never block each other.
func (m *Manager[T]) Lock(userID int64) func() {
	m.locksMu.Lock()
	l, ok := m.locks[userID]
	if !ok {
		l = &userLock{}
		m.locks[userID] = l
	}
	l.refs++
	m.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		m.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, userID)
		}
		m.locksMu.Unlock()
	}
}
