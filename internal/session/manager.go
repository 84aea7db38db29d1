package session

import (
	"errors"
	"sync"
)

var (
	// ErrNoSession means the user has no active workout session.
	ErrNoSession = errors.New("no active workout session")
	// ErrSessionActive means a session is already running for the user.
	ErrSessionActive = errors.New("a workout session is already active")
)

// Manager enforces at most one active session per user. Sessions are created
// per workout and discarded on completion or abandonment; nothing outlives
// the process.
type Manager struct {
	mu     sync.Mutex
	active map[int]*Session
}

// NewManager returns an empty session registry.
func NewManager() *Manager {
	return &Manager{active: make(map[int]*Session)}
}

// Start creates and registers a session for the user. A finished session
// left in the registry is replaced; a live one is not.
func (m *Manager) Start(cfg Config) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.active[cfg.UserID]; ok {
		if existing.Snapshot().State != StateFinished.String() {
			return nil, ErrSessionActive
		}
		delete(m.active, cfg.UserID)
	}

	s, err := New(cfg)
	if err != nil {
		return nil, err
	}
	m.active[cfg.UserID] = s
	return s, nil
}

// Get returns the user's active session.
func (m *Manager) Get(userID int) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.active[userID]
	if !ok {
		return nil, ErrNoSession
	}
	return s, nil
}

// Remove abandons and forgets the user's session. The session's timer is
// cancelled so no tick survives removal.
func (m *Manager) Remove(userID int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.active[userID]; ok {
		s.Abandon()
		delete(m.active, userID)
	}
}
