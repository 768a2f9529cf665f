package session

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/models"
)

func TestProjectSession_CreateChat(t *testing.T) {
	api := newFakeAPI()
	api.chats = []models.Chat{{ID: "chat-old", Title: "Old"}}
	sess, collector, _ := testSession(t, api)
	require.NoError(t, sess.Load(context.Background()))

	chat, err := sess.CreateChat(context.Background(), "Research questions")
	require.NoError(t, err)
	assert.Equal(t, "Research questions", chat.Title)

	// new chat lands at the head of the list
	snap := sess.Snapshot()
	require.Len(t, snap.Chats, 2)
	assert.Equal(t, chat.ID, snap.Chats[0].ID)
	assert.Equal(t, "chat-old", snap.Chats[1].ID)
	assert.Equal(t, []string{"Chat created successfully"}, collector.Successes())
}

func TestProjectSession_CreateChatDefaultTitle(t *testing.T) {
	api := newFakeAPI()
	sess, _, _ := testSession(t, api)
	require.NoError(t, sess.Load(context.Background()))

	chat, err := sess.CreateChat(context.Background(), "")
	require.NoError(t, err)
	assert.Regexp(t, `^Chat #\d+$`, chat.Title)
}

func TestProjectSession_CreateChatFailure(t *testing.T) {
	api := newFakeAPI()
	api.failWith("createChat", http.StatusInternalServerError)
	sess, collector, _ := testSession(t, api)
	require.NoError(t, sess.Load(context.Background()))

	_, err := sess.CreateChat(context.Background(), "doomed")
	require.Error(t, err)
	assert.Empty(t, sess.Snapshot().Chats)
	assert.Equal(t, "Failed to create chat", sess.LastError())
	assert.Equal(t, []string{"Failed to create chat"}, collector.Errors())
}

func TestProjectSession_DeleteChat(t *testing.T) {
	api := newFakeAPI()
	api.chats = []models.Chat{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	sess, collector, _ := testSession(t, api)
	require.NoError(t, sess.Load(context.Background()))

	require.NoError(t, sess.DeleteChat(context.Background(), "b"))

	snap := sess.Snapshot()
	require.Len(t, snap.Chats, 2)
	assert.Equal(t, "a", snap.Chats[0].ID)
	assert.Equal(t, "c", snap.Chats[1].ID)
	assert.Equal(t, []string{"Chat deleted successfully"}, collector.Successes())
}

func TestProjectSession_DeleteChatRollback(t *testing.T) {
	api := newFakeAPI()
	api.chats = []models.Chat{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	api.failWith("deleteChat", http.StatusInternalServerError)
	sess, collector, _ := testSession(t, api)
	require.NoError(t, sess.Load(context.Background()))

	err := sess.DeleteChat(context.Background(), "b")
	require.Error(t, err)

	// the chat is restored at its original position
	snap := sess.Snapshot()
	require.Len(t, snap.Chats, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{snap.Chats[0].ID, snap.Chats[1].ID, snap.Chats[2].ID})
	assert.Equal(t, "Failed to delete chat", snap.LastError)

	// exactly one error notification for the whole episode
	assert.Equal(t, []string{"Failed to delete chat"}, collector.Errors())
}

func TestProjectSession_DeleteUnknownChat(t *testing.T) {
	api := newFakeAPI()
	sess, _, _ := testSession(t, api)
	require.NoError(t, sess.Load(context.Background()))

	assert.Error(t, sess.DeleteChat(context.Background(), "ghost"))
}
