package session

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/models"
)

func strPtr(s string) *string   { return &s }
func intPtr(i int) *int         { return &i }
func f64Ptr(f float64) *float64 { return &f }

func TestProjectSession_UpdateDraft(t *testing.T) {
	api := newFakeAPI()
	sess, _, _ := testSession(t, api)
	require.NoError(t, sess.Load(context.Background()))

	require.Nil(t, sess.Draft())

	sess.UpdateDraft(models.SettingsPatch{RAGStrategy: strPtr("vector")})
	draft := sess.Draft()
	require.NotNil(t, draft)
	assert.Equal(t, "vector", draft.RAGStrategy)
	// untouched fields come from the published settings
	assert.Equal(t, 10, draft.ChunksPerSearch)

	// a second edit merges over the first draft, not the published base
	sess.UpdateDraft(models.SettingsPatch{ChunksPerSearch: intPtr(25)})
	draft = sess.Draft()
	assert.Equal(t, "vector", draft.RAGStrategy)
	assert.Equal(t, 25, draft.ChunksPerSearch)

	// published settings stay untouched until publish
	assert.Equal(t, "hybrid", sess.Settings().RAGStrategy)
}

func TestProjectSession_UpdateDraftBeforeLoad(t *testing.T) {
	api := newFakeAPI()
	sess, _, _ := testSession(t, api)

	// ignored, not a crash
	sess.UpdateDraft(models.SettingsPatch{RAGStrategy: strPtr("vector")})
	assert.Nil(t, sess.Draft())
}

func TestProjectSession_WeightsNotValidatedLocally(t *testing.T) {
	api := newFakeAPI()
	sess, _, _ := testSession(t, api)
	require.NoError(t, sess.Load(context.Background()))

	// weights that do not sum to 1 are accepted; the backend decides
	sess.UpdateDraft(models.SettingsPatch{VectorWeight: f64Ptr(0.9), KeywordWeight: f64Ptr(0.9)})
	draft := sess.Draft()
	require.NotNil(t, draft)
	assert.Equal(t, 0.9, draft.VectorWeight)
	assert.Equal(t, 0.9, draft.KeywordWeight)

	_, err := sess.PublishSettings(context.Background())
	assert.NoError(t, err)
}

func TestProjectSession_PublishSettings(t *testing.T) {
	api := newFakeAPI()
	sess, collector, _ := testSession(t, api)
	require.NoError(t, sess.Load(context.Background()))

	sess.UpdateDraft(models.SettingsPatch{RAGStrategy: strPtr("vector")})
	echoed, err := sess.PublishSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "vector", echoed.RAGStrategy)

	// the echo is adopted and the draft cleared
	assert.Equal(t, "vector", sess.Settings().RAGStrategy)
	assert.Nil(t, sess.Draft())
	assert.Equal(t, []string{"Settings updated successfully"}, collector.Successes())
}

func TestProjectSession_PublishFailureKeepsDraft(t *testing.T) {
	api := newFakeAPI()
	sess, collector, _ := testSession(t, api)
	require.NoError(t, sess.Load(context.Background()))

	sess.UpdateDraft(models.SettingsPatch{RAGStrategy: strPtr("vector")})
	api.failWith("putSettings", http.StatusInternalServerError)

	_, err := sess.PublishSettings(context.Background())
	require.Error(t, err)

	// edits survive so the user can retry
	draft := sess.Draft()
	require.NotNil(t, draft)
	assert.Equal(t, "vector", draft.RAGStrategy)
	assert.Equal(t, "hybrid", sess.Settings().RAGStrategy)
	assert.Equal(t, "Failed to update settings", sess.LastError())
	assert.Equal(t, []string{"Failed to update settings"}, collector.Errors())
}

func TestProjectSession_PublishWithoutDraft(t *testing.T) {
	api := newFakeAPI()
	sess, _, _ := testSession(t, api)
	require.NoError(t, sess.Load(context.Background()))

	// no draft: the published settings are re-sent as-is
	echoed, err := sess.PublishSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hybrid", echoed.RAGStrategy)
}

func TestProjectSession_PublishBeforeLoad(t *testing.T) {
	api := newFakeAPI()
	sess, _, _ := testSession(t, api)

	_, err := sess.PublishSettings(context.Background())
	assert.Error(t, err)
}
