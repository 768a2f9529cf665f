package session

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/models"
)

func (f *fakeAPI) setDocuments(docs []models.ProjectDocument) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.documents = docs
}

func (f *fakeAPI) docListCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listDocsCalls
}

func TestPoller_IdleWhenAllTerminal(t *testing.T) {
	api := newFakeAPI()
	api.documents = []models.ProjectDocument{
		{ID: "d1", Filename: "a.pdf", ProcessingStatus: models.StatusCompleted},
		{ID: "d2", Filename: "b.pdf", ProcessingStatus: models.StatusFailed},
	}
	sess, _, _ := testSession(t, api)
	sess.SetPollInterval(10 * time.Millisecond)
	require.NoError(t, sess.Load(context.Background()))

	assert.False(t, sess.Snapshot().Polling)

	// no background fetches happen while idle
	calls := api.docListCalls()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, calls, api.docListCalls())
}

func TestPoller_RunsUntilTerminalThenStops(t *testing.T) {
	api := newFakeAPI()
	api.documents = []models.ProjectDocument{
		{ID: "d1", Filename: "a.pdf", ProcessingStatus: "processing"},
	}
	sess, collector, _ := testSession(t, api)
	sess.SetPollInterval(10 * time.Millisecond)
	require.NoError(t, sess.Load(context.Background()))

	assert.True(t, sess.Snapshot().Polling)

	// let a few cycles land, then finish the document
	waitFor(t, time.Second, func() bool { return api.docListCalls() >= 3 })
	api.setDocuments([]models.ProjectDocument{
		{ID: "d1", Filename: "a.pdf", ProcessingStatus: models.StatusCompleted},
	})

	waitFor(t, time.Second, func() bool { return !sess.Snapshot().Polling })

	snap := sess.Snapshot()
	require.Len(t, snap.Documents, 1)
	assert.Equal(t, models.StatusCompleted, snap.Documents[0].ProcessingStatus)
	assert.Contains(t, collector.Successes(), "a.pdf finished processing")

	// once stopped, no further fetches
	calls := api.docListCalls()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, calls, api.docListCalls())
}

func TestPoller_AnnouncesFailures(t *testing.T) {
	api := newFakeAPI()
	api.documents = []models.ProjectDocument{
		{ID: "d1", Filename: "bad.pdf", ProcessingStatus: "processing"},
	}
	sess, collector, _ := testSession(t, api)
	sess.SetPollInterval(10 * time.Millisecond)
	require.NoError(t, sess.Load(context.Background()))

	api.setDocuments([]models.ProjectDocument{
		{ID: "d1", Filename: "bad.pdf", ProcessingStatus: models.StatusFailed},
	})

	waitFor(t, time.Second, func() bool { return !sess.Snapshot().Polling })
	assert.Contains(t, collector.Errors(), "bad.pdf failed processing")
}

func TestPoller_SwallowsFetchFailures(t *testing.T) {
	api := newFakeAPI()
	api.documents = []models.ProjectDocument{
		{ID: "d1", Filename: "a.pdf", ProcessingStatus: "processing"},
	}
	sess, collector, _ := testSession(t, api)
	sess.SetPollInterval(10 * time.Millisecond)
	require.NoError(t, sess.Load(context.Background()))

	// poll fetches fail for a while; the loop keeps going quietly
	api.failWith("listDocuments", http.StatusBadGateway)
	calls := api.docListCalls()
	waitFor(t, time.Second, func() bool { return api.docListCalls() >= calls+3 })
	assert.True(t, sess.Snapshot().Polling)
	assert.Empty(t, collector.Errors(), "poll failures never surface to the user")
	assert.Empty(t, sess.LastError())

	// recovery resumes normal replacement
	api.clearFailure("listDocuments")
	api.setDocuments([]models.ProjectDocument{
		{ID: "d1", Filename: "a.pdf", ProcessingStatus: models.StatusCompleted},
	})
	waitFor(t, time.Second, func() bool { return !sess.Snapshot().Polling })
}

func TestPoller_WholesaleReplace(t *testing.T) {
	api := newFakeAPI()
	api.documents = []models.ProjectDocument{
		{ID: "d1", Filename: "a.pdf", ProcessingStatus: "processing"},
		{ID: "d2", Filename: "b.pdf", ProcessingStatus: models.StatusCompleted},
	}
	sess, _, _ := testSession(t, api)
	sess.SetPollInterval(10 * time.Millisecond)
	require.NoError(t, sess.Load(context.Background()))

	// a document deleted server-side disappears from the snapshot
	api.setDocuments([]models.ProjectDocument{
		{ID: "d1", Filename: "a.pdf", ProcessingStatus: models.StatusCompleted},
	})
	waitFor(t, time.Second, func() bool { return len(sess.Snapshot().Documents) == 1 })
}

// stragglerStore reports all documents terminal on the first fetch while
// its predicate already sees a new in-progress document, mimicking a
// document landing between the final tick settling and the loop stopping.
type stragglerStore struct {
	mu      sync.Mutex
	fetches int
}

func (r *stragglerStore) FetchDocuments(ctx context.Context) ([]models.ProjectDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetches++
	if r.fetches == 1 {
		return []models.ProjectDocument{{ID: "d1", ProcessingStatus: models.StatusCompleted}}, nil
	}
	return []models.ProjectDocument{{ID: "d2", ProcessingStatus: "processing"}}, nil
}

func (r *stragglerStore) ReplaceDocuments(docs []models.ProjectDocument) ([]StatusTransition, bool) {
	for _, d := range docs {
		if !d.IsTerminal() {
			return nil, true
		}
	}
	return nil, false
}

func (r *stragglerStore) PollingNeeded() bool {
	return true
}

func (r *stragglerStore) fetchCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fetches
}

func TestPoller_RestartsWhenDocumentLandsDuringStop(t *testing.T) {
	store := &stragglerStore{}
	p := NewStatusPoller(store, 10*time.Millisecond, nil, zerolog.Nop())
	t.Cleanup(p.Stop)

	p.Reevaluate(true)

	// the first cycle sees everything terminal, but the predicate has
	// already turned true again; the loop must pick the work back up
	waitFor(t, time.Second, func() bool { return store.fetchCount() >= 2 })
	assert.True(t, p.IsRunning())
}

func TestPoller_StopOnClose(t *testing.T) {
	api := newFakeAPI()
	api.documents = []models.ProjectDocument{
		{ID: "d1", Filename: "a.pdf", ProcessingStatus: "processing"},
	}
	sess, _, _ := testSession(t, api)
	sess.SetPollInterval(10 * time.Millisecond)
	require.NoError(t, sess.Load(context.Background()))
	require.True(t, sess.Snapshot().Polling)

	sess.Close()
	waitFor(t, time.Second, func() bool { return !sess.Snapshot().Polling })
}
