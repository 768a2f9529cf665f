package session

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/models"
)

func TestProjectSession_UploadFiles(t *testing.T) {
	api := newFakeAPI()
	api.documents = []models.ProjectDocument{
		{ID: "doc-old", Filename: "old.pdf", ProcessingStatus: models.StatusCompleted},
	}
	sess, collector, _ := testSession(t, api)
	require.NoError(t, sess.Load(context.Background()))

	result, err := sess.UploadFiles(context.Background(), []UploadFile{
		{Name: "a.txt", ContentType: "text/plain", Data: []byte("aaa")},
		{Name: "b.txt", ContentType: "text/plain", Data: []byte("bbb")},
	})
	require.NoError(t, err)
	require.Len(t, result.Documents, 2)
	assert.Empty(t, result.Failures)

	// successes are prepended in input order
	snap := sess.Snapshot()
	require.Len(t, snap.Documents, 3)
	assert.Equal(t, "a.txt", snap.Documents[0].Filename)
	assert.Equal(t, "b.txt", snap.Documents[1].Filename)
	assert.Equal(t, "doc-old", snap.Documents[2].ID)

	assert.Equal(t, []string{"Uploaded 2 file(s)"}, collector.Successes())

	// fresh documents are non-terminal, so polling starts
	assert.True(t, snap.Polling)
}

func TestProjectSession_UploadFilesPartialFailure(t *testing.T) {
	api := newFakeAPI()
	api.failWith("storage:b.txt", http.StatusForbidden)
	sess, collector, _ := testSession(t, api)
	require.NoError(t, sess.Load(context.Background()))

	result, err := sess.UploadFiles(context.Background(), []UploadFile{
		{Name: "a.txt", ContentType: "text/plain", Data: []byte("aaa")},
		{Name: "b.txt", ContentType: "text/plain", Data: []byte("bbb")},
		{Name: "c.txt", ContentType: "text/plain", Data: []byte("ccc")},
	})
	require.NoError(t, err, "partial failure is a result, not an error")

	require.Len(t, result.Documents, 2)
	assert.Equal(t, "a.txt", result.Documents[0].Filename)
	assert.Equal(t, "c.txt", result.Documents[1].Filename)

	require.Len(t, result.Failures, 1)
	assert.Equal(t, "b.txt", result.Failures[0].Name)
	require.Error(t, result.Failures[0].Err)

	// the store gains exactly the two survivors
	snap := sess.Snapshot()
	assert.Len(t, snap.Documents, 2)

	assert.Equal(t, []string{"Uploaded 2 file(s)"}, collector.Successes())
	assert.Equal(t, []string{"Failed to upload b.txt"}, collector.Errors())
}

func TestProjectSession_UploadFilesAllFail(t *testing.T) {
	api := newFakeAPI()
	api.failWith("uploadURL:a.txt", http.StatusInternalServerError)
	sess, collector, _ := testSession(t, api)
	require.NoError(t, sess.Load(context.Background()))

	result, err := sess.UploadFiles(context.Background(), []UploadFile{
		{Name: "a.txt", ContentType: "text/plain", Data: []byte("aaa")},
	})
	require.NoError(t, err)
	assert.Empty(t, result.Documents)
	require.Len(t, result.Failures, 1)

	// no success toast when nothing landed
	assert.Empty(t, collector.Successes())
	assert.Equal(t, []string{"Failed to upload a.txt"}, collector.Errors())
	assert.Empty(t, sess.Snapshot().Documents)
}

func TestProjectSession_UploadBeforeLoad(t *testing.T) {
	api := newFakeAPI()
	sess, _, _ := testSession(t, api)

	_, err := sess.UploadFiles(context.Background(), []UploadFile{{Name: "a.txt"}})
	assert.Error(t, err)
}
