package core

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when a session ID is unknown or the
// session has been retired.
var ErrSessionNotFound = errors.New("session not found")

// Manager owns the live sessions, keyed by ID. Sessions that stay idle
// past the TTL are retired by the reaper.
type Manager struct {
	validator *Validator
	logger    *slog.Logger
	ttl       time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a Manager whose sessions validate uploads against
// maxFileSize and are retired after ttl of inactivity.
func NewManager(maxFileSize int64, ttl time.Duration, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		validator: NewValidator(maxFileSize),
		logger:    logger,
		ttl:       ttl,
		sessions:  make(map[string]*Session),
	}
}

// Create starts a new session and returns it.
func (m *Manager) Create() *Session {
	s := NewSession(uuid.New().String(), m.validator, m.logger)
	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()
	m.logger.Info("session created", "session_id", s.ID())
	return s
}

// Get returns the session with the given ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Count reports the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close retires every session. Used at shutdown.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		s.Close()
		delete(m.sessions, id)
	}
}

// StartReaper retires idle sessions until ctx is cancelled. It checks at
// a quarter of the TTL, with a floor to avoid a hot loop in tests.
func (m *Manager) StartReaper(ctx context.Context) {
	interval := m.ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.reap(time.Now())
		}
	}
}

// reap retires sessions idle since before now-ttl.
func (m *Manager) reap(now time.Time) {
	cutoff := now.Add(-m.ttl)
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if s.LastActive().Before(cutoff) {
			s.Close()
			delete(m.sessions, id)
			m.logger.Info("session retired", "session_id", id)
		}
	}
}
