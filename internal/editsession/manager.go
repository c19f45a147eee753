package editsession

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Manager tracks the open sessions of a long-running server. Closing a
// session through its Cancel or Save removes it from the manager.
type Manager struct {
	src  Source
	opts []Option

	mu       sync.Mutex
	sessions map[string]*Session
	entropy  *ulid.MonotonicEntropy
}

// NewManager creates a manager whose sessions are seeded from src and
// configured with opts.
func NewManager(src Source, opts ...Option) *Manager {
	return &Manager{
		src:      src,
		opts:     opts,
		sessions: make(map[string]*Session),
		entropy:  ulid.Monotonic(rand.Reader, 0),
	}
}

// Open starts a session for issueID and registers it under a new ULID.
// onClose, when non-nil, runs after the session is unregistered.
func (m *Manager) Open(ctx context.Context, issueID string, onClose CloseFunc) (string, *Session, error) {
	m.mu.Lock()
	id, err := ulid.New(ulid.Timestamp(time.Now()), m.entropy)
	m.mu.Unlock()
	if err != nil {
		return "", nil, fmt.Errorf("new session id: %w", err)
	}
	sessionID := id.String()

	sess, err := Open(ctx, m.src, issueID, func(o Outcome) {
		m.mu.Lock()
		delete(m.sessions, sessionID)
		m.mu.Unlock()
		if onClose != nil {
			onClose(o)
		}
	}, m.opts...)
	if err != nil {
		return "", nil, err
	}

	m.mu.Lock()
	m.sessions[sessionID] = sess
	m.mu.Unlock()
	return sessionID, sess, nil
}

// Get returns an open session.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// CancelAll cancels every open session, e.g. on server shutdown.
func (m *Manager) CancelAll() {
	m.mu.Lock()
	open := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		open = append(open, s)
	}
	m.mu.Unlock()

	for _, s := range open {
		_ = s.Cancel()
	}
}
