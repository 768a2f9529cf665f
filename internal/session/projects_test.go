package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/apperrors"
	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/backend"
	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/notify"
	"github.com/jawahar-singamsetty/retrivis.ai-client/pkg/tokensource"
)

func testProjectList(t *testing.T, api *fakeAPI) (*ProjectList, *notify.Collector) {
	t.Helper()
	server := httptest.NewServer(api.handler())
	t.Cleanup(server.Close)

	client := backend.NewClient(server.URL, tokensource.Static("test-token"), zerolog.Nop())
	client.SetHTTPClient(server.Client())

	collector := notify.NewCollector()
	return NewProjectList(client, collector, zerolog.Nop()), collector
}

func TestProjectList_LoadAndFilter(t *testing.T) {
	api := newFakeAPI()
	list, _ := testProjectList(t, api)
	require.NoError(t, list.Load(context.Background()))

	assert.Len(t, list.Projects(""), 1)
	assert.Len(t, list.Projects("thesis"), 1)
	assert.Empty(t, list.Projects("nonexistent"))
}

func TestProjectList_Create(t *testing.T) {
	api := newFakeAPI()
	list, collector := testProjectList(t, api)
	require.NoError(t, list.Load(context.Background()))

	project, err := list.Create(context.Background(), "New Project", "desc")
	require.NoError(t, err)

	projects := list.Projects("")
	require.Len(t, projects, 2)
	assert.Equal(t, project.ID, projects[0].ID)
	assert.Equal(t, []string{"Project created successfully!"}, collector.Successes())
}

func TestProjectList_CreateBeforeLoad(t *testing.T) {
	api := newFakeAPI()
	list, _ := testProjectList(t, api)

	_, err := list.Create(context.Background(), "too early", "")
	assert.Error(t, err)
}

func TestProjectList_DeleteRollback(t *testing.T) {
	api := newFakeAPI()
	api.failWith("deleteProject", http.StatusInternalServerError)
	list, collector := testProjectList(t, api)
	require.NoError(t, list.Load(context.Background()))

	err := list.Delete(context.Background(), "p1")
	require.Error(t, err)

	projects := list.Projects("")
	require.Len(t, projects, 1, "the project is restored after a failed delete")
	assert.Equal(t, "p1", projects[0].ID)
	assert.Equal(t, "Failed to delete project", list.LastError())
	assert.Equal(t, []string{"Failed to delete project"}, collector.Errors())
}

func TestProjectList_Delete(t *testing.T) {
	api := newFakeAPI()
	list, collector := testProjectList(t, api)
	require.NoError(t, list.Load(context.Background()))

	require.NoError(t, list.Delete(context.Background(), "p1"))
	assert.Empty(t, list.Projects(""))
	assert.Equal(t, []string{"Project deleted successfully!"}, collector.Successes())

	assert.ErrorIs(t, list.Delete(context.Background(), "ghost"), apperrors.ErrNotLoaded)
}

func TestProjectList_FilterCaseInsensitive(t *testing.T) {
	api := newFakeAPI()
	list, _ := testProjectList(t, api)
	require.NoError(t, list.Load(context.Background()))

	assert.Len(t, list.Projects("THESIS"), 1)
}
