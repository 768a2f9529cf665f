// Package session implements the client-side data-synchronization layer:
// per-view entity snapshots, optimistic mutations with rollback, the
// concurrent upload pipeline, and background document status polling.
//
// Every entity copy lives inside a session; readers get snapshots, never
// aliases, and all mutation goes through merge methods applied atomically
// under the session lock. The lock is never held across a network call:
// a mutation applies its provisional change, releases the lock, performs
// exactly one remote call, then re-acquires the lock to confirm or roll
// back.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/backend"
	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/lru"
	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/metrics"
	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/models"
	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/notify"
)

// DefaultPollInterval is the document status poll period when none is
// configured.
const DefaultPollInterval = 5 * time.Second

// ProjectSession holds the authoritative-for-this-session snapshot of one
// project view: the project, its chats, its document collection, and its
// retrieval settings (plus the unpersisted settings draft).
type ProjectSession struct {
	projectID string
	client    *backend.Client
	notifier  notify.Notifier
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	poller    *StatusPoller

	mu     sync.Mutex
	closed bool
	loaded bool

	lastErr      string
	creatingChat bool
	publishing   bool

	project   *models.Project
	chats     []models.Chat
	documents []models.ProjectDocument
	settings  *models.ProjectSettings
	draft     *models.ProjectSettings

	chatSessions map[string]*ChatSession
	chunks       *lru.Cache[string, []models.Chunk]
}

// chunkCacheSize bounds how many chunk listings a session keeps around.
const chunkCacheSize = 32

// NewProjectSession creates a session for one project view. Call Load
// before reading the snapshot.
func NewProjectSession(projectID string, client *backend.Client, notifier notify.Notifier, logger zerolog.Logger) *ProjectSession {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	s := &ProjectSession{
		projectID:    projectID,
		client:       client,
		notifier:     notifier,
		logger:       logger.With().Str("component", "session").Str("project_id", projectID).Logger(),
		chatSessions: make(map[string]*ChatSession),
		chunks:       lru.New[string, []models.Chunk](chunkCacheSize),
	}
	s.poller = NewStatusPoller(s, DefaultPollInterval, notifier, s.logger)
	return s
}

// SetMetrics attaches a metrics recorder.
func (s *ProjectSession) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
	s.poller.metrics = m
}

// SetPollInterval overrides the document status poll period. Must be
// called before Load.
func (s *ProjectSession) SetPollInterval(d time.Duration) {
	if d > 0 {
		s.poller.interval = d
	}
}

// ProjectID returns the id of the project this session tracks.
func (s *ProjectSession) ProjectID() string {
	return s.projectID
}

// Snapshot is an immutable copy of the session state handed to
// presentation views.
type Snapshot struct {
	Project   *models.Project
	Chats     []models.Chat
	Documents []models.ProjectDocument
	Settings  *models.ProjectSettings
	Draft     *models.ProjectSettings
	Loaded    bool
	LastError string
	Polling   bool
}

// Snapshot returns a copy of the current session state.
func (s *ProjectSession) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Project:   copyPtr(s.project),
		Chats:     append([]models.Chat(nil), s.chats...),
		Documents: append([]models.ProjectDocument(nil), s.documents...),
		Settings:  copyPtr(s.settings),
		Draft:     copyPtr(s.draft),
		Loaded:    s.loaded,
		LastError: s.lastErr,
		Polling:   s.poller.IsRunning(),
	}
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Load fetches the four view collections (project, chats, documents,
// settings) concurrently. The load is all-or-nothing: a single failure
// aborts without applying any partial result.
func (s *ProjectSession) Load(ctx context.Context) error {
	var (
		wg       sync.WaitGroup
		project  *models.Project
		chats    []models.Chat
		docs     []models.ProjectDocument
		settings *models.ProjectSettings

		errMu    sync.Mutex
		firstErr error
	)

	record := func(err error) {
		errMu.Lock()
		defer errMu.Unlock()
		if firstErr == nil {
			firstErr = err
		}
	}

	wg.Add(4)
	go func() {
		defer wg.Done()
		p, err := s.client.GetProject(ctx, s.projectID)
		if err != nil {
			record(err)
			return
		}
		project = p
	}()
	go func() {
		defer wg.Done()
		c, err := s.client.ListChats(ctx, s.projectID)
		if err != nil {
			record(err)
			return
		}
		chats = c
	}()
	go func() {
		defer wg.Done()
		d, err := s.client.ListDocuments(ctx, s.projectID)
		if err != nil {
			record(err)
			return
		}
		docs = d
	}()
	go func() {
		defer wg.Done()
		st, err := s.client.GetSettings(ctx, s.projectID)
		if err != nil {
			record(err)
			return
		}
		settings = st
	}()
	wg.Wait()

	if firstErr != nil {
		s.mu.Lock()
		s.lastErr = "Failed to fetch data"
		s.mu.Unlock()
		s.notifier.Error("Failed to fetch data")
		return fmt.Errorf("loading project %s: %w", s.projectID, firstErr)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Debug().Msg("load resolved after close, discarding")
		return nil
	}
	s.project = project
	s.chats = chats
	s.documents = docs
	s.settings = settings
	s.draft = nil
	s.loaded = true
	s.lastErr = ""
	s.mu.Unlock()

	s.logger.Info().
		Int("chats", len(chats)).
		Int("documents", len(docs)).
		Msg("project loaded")

	s.reevaluatePoller()
	return nil
}

// Close tears the session down: no further store writes are accepted and
// the status poller is stopped. Late-resolving remote calls are ignored.
func (s *ProjectSession) Close() {
	s.mu.Lock()
	s.closed = true
	s.chatSessions = make(map[string]*ChatSession)
	s.mu.Unlock()
	s.chunks.Clear()
	s.poller.Stop()
	s.logger.Debug().Msg("session closed")
}

// LastError returns the latest user-visible error, if any.
func (s *ProjectSession) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// ClearError dismisses the current error.
func (s *ProjectSession) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = ""
}
