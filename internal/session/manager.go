package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/backend"
	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/metrics"
	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/notify"
)

// Manager owns the live project sessions, keyed by project id. Closing a
// session through the manager stops its poller, so no timer outlives its
// view.
type Manager struct {
	client       *backend.Client
	notifier     notify.Notifier
	metrics      *metrics.Metrics
	pollInterval time.Duration
	logger       zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*ProjectSession
}

// NewManager creates a session manager.
func NewManager(client *backend.Client, notifier notify.Notifier, pollInterval time.Duration, logger zerolog.Logger) *Manager {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Manager{
		client:       client,
		notifier:     notifier,
		pollInterval: pollInterval,
		logger:       logger.With().Str("component", "sessions").Logger(),
		sessions:     make(map[string]*ProjectSession),
	}
}

// SetMetrics attaches a metrics recorder to the manager and all future
// sessions.
func (m *Manager) SetMetrics(mm *metrics.Metrics) {
	m.metrics = mm
}

// Open returns the live session for a project, loading a fresh one if
// none exists. A session that fails its initial load is not retained.
func (m *Manager) Open(ctx context.Context, projectID string) (*ProjectSession, error) {
	m.mu.Lock()
	if s, ok := m.sessions[projectID]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	s := NewProjectSession(projectID, m.client, m.notifier, m.logger)
	s.SetMetrics(m.metrics)
	s.SetPollInterval(m.pollInterval)
	if err := s.Load(ctx); err != nil {
		s.Close()
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sessions[projectID]; ok {
		// Lost the race to another opener; keep theirs.
		s.Close()
		return existing, nil
	}
	m.sessions[projectID] = s
	return s, nil
}

// Get returns the live session for a project, if one is open.
func (m *Manager) Get(projectID string) (*ProjectSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[projectID]
	return s, ok
}

// Close tears down the session for a project.
func (m *Manager) Close(projectID string) {
	m.mu.Lock()
	s, ok := m.sessions[projectID]
	delete(m.sessions, projectID)
	m.mu.Unlock()
	if ok {
		s.Close()
	}
}

// CloseAll tears down every live session. Called on daemon shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := make([]*ProjectSession, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*ProjectSession)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

// OpenCount returns the number of live sessions.
func (m *Manager) OpenCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
