package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/backend"
	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/notify"
	"github.com/jawahar-singamsetty/retrivis.ai-client/pkg/tokensource"
)

func testManager(t *testing.T, api *fakeAPI) *Manager {
	t.Helper()
	server := httptest.NewServer(api.handler())
	t.Cleanup(server.Close)

	client := backend.NewClient(server.URL, tokensource.Static("test-token"), zerolog.Nop())
	client.SetHTTPClient(server.Client())

	m := NewManager(client, notify.NewCollector(), 10*time.Millisecond, zerolog.Nop())
	t.Cleanup(m.CloseAll)
	return m
}

func TestManager_OpenSharesSessions(t *testing.T) {
	api := newFakeAPI()
	m := testManager(t, api)

	a, err := m.Open(context.Background(), "p1")
	require.NoError(t, err)
	b, err := m.Open(context.Background(), "p1")
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, m.OpenCount())
}

func TestManager_FailedLoadNotRetained(t *testing.T) {
	api := newFakeAPI()
	api.failWith("getProject", http.StatusInternalServerError)
	m := testManager(t, api)

	_, err := m.Open(context.Background(), "p1")
	require.Error(t, err)
	assert.Equal(t, 0, m.OpenCount())

	// once the backend recovers, opening works
	api.clearFailure("getProject")
	s, err := m.Open(context.Background(), "p1")
	require.NoError(t, err)
	assert.True(t, s.Snapshot().Loaded)
}

func TestManager_Close(t *testing.T) {
	api := newFakeAPI()
	m := testManager(t, api)

	s, err := m.Open(context.Background(), "p1")
	require.NoError(t, err)

	m.Close("p1")
	assert.Equal(t, 0, m.OpenCount())
	_, ok := m.Get("p1")
	assert.False(t, ok)

	// the closed session refuses new work
	_, err = s.CreateChat(context.Background(), "after close")
	assert.Error(t, err)
}

func TestManager_CloseAll(t *testing.T) {
	api := newFakeAPI()
	m := testManager(t, api)

	_, err := m.Open(context.Background(), "p1")
	require.NoError(t, err)
	_, err = m.Open(context.Background(), "p2")
	require.NoError(t, err)
	require.Equal(t, 2, m.OpenCount())

	m.CloseAll()
	assert.Equal(t, 0, m.OpenCount())
}
