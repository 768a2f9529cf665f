package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/metrics"
	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/models"
	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/notify"
)

// documentStore is the slice of the session the poller touches.
type documentStore interface {
	FetchDocuments(ctx context.Context) ([]models.ProjectDocument, error)
	ReplaceDocuments(docs []models.ProjectDocument) (transitions []StatusTransition, active bool)
	PollingNeeded() bool
}

// StatusTransition records a document's processing status change observed
// by a poll cycle.
type StatusTransition struct {
	Document models.ProjectDocument
	From     string
	To       string
}

// StatusPoller keeps document processing status current without user
// action. It runs a ticker goroutine while at least one document is in a
// non-terminal status, wholesale-replacing the stored collection on each
// tick (last fetch wins), and stops on its own once every document
// reaches a terminal status. Poll failures are logged and swallowed;
// transient network trouble never interrupts an otherwise-working
// session and never surfaces a user-visible error.
type StatusPoller struct {
	store    documentStore
	interval time.Duration
	notifier notify.Notifier
	metrics  *metrics.Metrics
	logger   zerolog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// NewStatusPoller creates a poller over the given store. It starts idle;
// call Reevaluate whenever the document collection changes.
func NewStatusPoller(store documentStore, interval time.Duration, notifier notify.Notifier, logger zerolog.Logger) *StatusPoller {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &StatusPoller{
		store:    store,
		interval: interval,
		notifier: notifier,
		logger:   logger.With().Str("component", "poller").Logger(),
	}
}

// Reevaluate starts or stops the polling loop to match the activation
// predicate. Idempotent; safe to call after every collection change.
func (p *StatusPoller) Reevaluate(active bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case active && !p.running:
		ctx, cancel := context.WithCancel(context.Background())
		p.cancel = cancel
		p.running = true
		go p.run(ctx)
		p.logger.Debug().Dur("interval", p.interval).Msg("status polling started")
	case !active && p.running:
		p.cancel()
		p.cancel = nil
		p.running = false
		p.logger.Debug().Msg("status polling stopped")
	}
}

// Stop cancels the polling loop. Called on session teardown so no timer
// outlives its view.
func (p *StatusPoller) Stop() {
	p.Reevaluate(false)
}

// IsRunning reports whether the polling loop is active.
func (p *StatusPoller) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *StatusPoller) run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !p.tick(ctx) {
				p.mu.Lock()
				if ctx.Err() != nil {
					// Reevaluate already tore this loop down
					p.mu.Unlock()
					return
				}
				if p.cancel != nil {
					p.cancel()
					p.cancel = nil
				}
				p.running = false
				p.mu.Unlock()
				p.logger.Debug().Msg("all documents terminal, polling stopped")
				// a document added while the final tick settled saw
				// running still true and skipped its restart; recheck
				// the predicate now that the stop is committed
				p.Reevaluate(p.store.PollingNeeded())
				return
			}
		}
	}
}

// tick performs one poll cycle. Returns false once every tracked document
// is terminal and the loop should end.
func (p *StatusPoller) tick(ctx context.Context) bool {
	p.metrics.RecordPollCycle()

	docs, err := p.store.FetchDocuments(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Warn().Err(err).Msg("status poll failed")
		return true
	}

	transitions, active := p.store.ReplaceDocuments(docs)
	for _, tr := range transitions {
		p.announce(tr)
	}
	return active
}

// announce emits a notification for a document reaching a terminal status.
func (p *StatusPoller) announce(tr StatusTransition) {
	name := tr.Document.Filename
	if name == "" {
		name = tr.Document.SourceURL
	}
	switch tr.To {
	case models.StatusCompleted:
		p.notifier.Success(fmt.Sprintf("%s finished processing", name))
	case models.StatusFailed:
		p.notifier.Error(fmt.Sprintf("%s failed processing", name))
	}
}

// FetchDocuments implements documentStore for the session.
func (s *ProjectSession) FetchDocuments(ctx context.Context) ([]models.ProjectDocument, error) {
	return s.client.ListDocuments(ctx, s.projectID)
}

// ReplaceDocuments wholesale-replaces the stored collection (no per-item
// merge; last fetch wins) and reports terminal transitions plus whether
// any document is still in progress. A closed session refuses the write
// and reports inactive.
func (s *ProjectSession) ReplaceDocuments(docs []models.ProjectDocument) ([]StatusTransition, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, false
	}

	prior := make(map[string]string, len(s.documents))
	for _, d := range s.documents {
		prior[d.ID] = d.ProcessingStatus
	}

	var transitions []StatusTransition
	active := false
	for _, d := range docs {
		if !d.IsTerminal() {
			active = true
		}
		from, known := prior[d.ID]
		if known && from != d.ProcessingStatus && d.IsTerminal() {
			transitions = append(transitions, StatusTransition{Document: d, From: from, To: d.ProcessingStatus})
		}
	}

	s.documents = append([]models.ProjectDocument(nil), docs...)
	return transitions, active
}

// PollingNeeded reports whether any stored document is still in progress.
// A closed session never needs polling.
func (s *ProjectSession) PollingNeeded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	for _, d := range s.documents {
		if !d.IsTerminal() {
			return true
		}
	}
	return false
}

// reevaluatePoller recomputes the activation predicate after a document
// collection change.
func (s *ProjectSession) reevaluatePoller() {
	s.poller.Reevaluate(s.PollingNeeded())
}
