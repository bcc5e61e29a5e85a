package session

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/tendant/sortbin/internal/detect"
	"github.com/tendant/sortbin/internal/metrics"
	"github.com/tendant/sortbin/internal/preview"
	"github.com/tendant/sortbin/internal/storage"
)

// DefaultIdleTimeout closes sessions nobody touched for this long
const DefaultIdleTimeout = 30 * time.Minute

// Manager tracks open sessions by id
type Manager struct {
	store    storage.Store
	previews *preview.Registry
	detector detect.Detector

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a manager whose sessions share store, previews and detector
func NewManager(store storage.Store, previews *preview.Registry, detector detect.Detector) *Manager {
	return &Manager{
		store:    store,
		previews: previews,
		detector: detector,
		sessions: make(map[string]*Session),
	}
}

// DetectEnabled reports whether sessions can run detection
func (m *Manager) DetectEnabled() bool {
	return m.detector != nil
}

// Create opens a new session
func (m *Manager) Create() *Session {
	s := New(m.store, m.previews, m.detector)

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()

	metrics.Sessions.Inc()
	log.Printf("[%s] Session created", s.ID())
	return s
}

// Get returns an open session
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// Close releases a session and forgets it
func (m *Manager) Close(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	s.Close(ctx)
	metrics.Sessions.Dec()
	log.Printf("[%s] Session closed", id)
	return nil
}

// Sweep closes sessions idle for longer than idle and returns how many it closed
func (m *Manager) Sweep(ctx context.Context, idle time.Duration) int {
	cutoff := time.Now().Add(-idle)

	m.mu.Lock()
	var stale []string
	for id, s := range m.sessions {
		if s.LastActive().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	m.mu.Unlock()

	closed := 0
	for _, id := range stale {
		if err := m.Close(ctx, id); err == nil {
			closed++
		}
	}
	if closed > 0 {
		log.Printf("Swept %d idle session(s)", closed)
	}
	return closed
}

// CloseAll closes every session
func (m *Manager) CloseAll(ctx context.Context) {
	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		m.Close(ctx, id)
	}
}

// Len returns the number of open sessions
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
