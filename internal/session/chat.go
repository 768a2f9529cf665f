package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/apperrors"
	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/backend"
	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/metrics"
	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/models"
	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/notify"
)

// messageEntry wraps a message with its provisional tag. A non-empty
// tempID marks a locally synthesized, not-yet-confirmed message; the tag
// lives at the type level so detection never inspects id strings, and a
// uuid temp id can never collide with a server id.
type messageEntry struct {
	msg    models.Message
	tempID string
}

func (e messageEntry) provisional() bool {
	return e.tempID != ""
}

// ChatSession holds one conversation's ordered message history and the
// optimistic send-message state machine.
type ChatSession struct {
	projectID string
	chatID    string
	client    *backend.Client
	notifier  notify.Notifier
	metrics   *metrics.Metrics
	logger    zerolog.Logger

	mu      sync.Mutex
	loaded  bool
	chat    models.Chat
	entries []messageEntry
	sending bool
	lastErr string
}

// NewChatSession creates a session for one conversation. Call Load before
// sending.
func NewChatSession(projectID, chatID string, client *backend.Client, notifier notify.Notifier, logger zerolog.Logger) *ChatSession {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &ChatSession{
		projectID: projectID,
		chatID:    chatID,
		client:    client,
		notifier:  notifier,
		logger:    logger.With().Str("component", "chat").Str("chat_id", chatID).Logger(),
	}
}

// Load fetches the chat and its full message history.
func (c *ChatSession) Load(ctx context.Context) error {
	chat, err := c.client.GetChat(ctx, c.chatID)
	if err != nil {
		c.notifier.Error("Failed to load chat. Please try again.")
		return err
	}

	entries := make([]messageEntry, 0, len(chat.Messages))
	for _, m := range chat.Messages {
		entries = append(entries, messageEntry{msg: m})
	}

	c.mu.Lock()
	c.chat = chat.Chat
	c.entries = entries
	c.loaded = true
	c.lastErr = ""
	c.mu.Unlock()

	c.logger.Info().Int("messages", len(entries)).Msg("chat loaded")
	return nil
}

// Chat returns a copy of the chat metadata.
func (c *ChatSession) Chat() models.Chat {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.chat
}

// Messages returns a copy of the ordered message list, provisional
// entries included.
func (c *ChatSession) Messages() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Message, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e.msg)
	}
	return out
}

// HasProvisional reports whether an unconfirmed message is currently in
// the list. After any settled send this is false again.
func (c *ChatSession) HasProvisional() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.provisional() {
			return true
		}
	}
	return false
}

// Sending reports whether a send is in flight.
func (c *ChatSession) Sending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sending
}

// LastError returns the latest user-visible error, if any.
func (c *ChatSession) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// ClearError dismisses the current error.
func (c *ChatSession) ClearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = ""
}

// SendMessage runs the three-phase optimistic protocol: a provisional
// user message appears immediately, exactly one remote call is issued,
// and the provisional entry is replaced in place by the server's echoed
// user message plus the assistant message, or removed entirely on
// failure. No provisional entry survives a settled send, whatever the
// outcome.
func (c *ChatSession) SendMessage(ctx context.Context, content string) error {
	c.mu.Lock()
	if !c.loaded {
		c.mu.Unlock()
		return apperrors.ErrNotLoaded
	}
	c.sending = true
	c.lastErr = ""

	tempID := uuid.New().String()
	c.entries = append(c.entries, messageEntry{
		tempID: tempID,
		msg: models.Message{
			ID:        tempID,
			ChatID:    c.chatID,
			Content:   content,
			Role:      models.RoleUser,
			CreatedAt: time.Now().UTC(),
			Citations: []string{},
		},
	})
	c.mu.Unlock()

	result, err := c.client.SendMessage(ctx, c.projectID, c.chatID, content)

	c.mu.Lock()
	c.sending = false
	idx := c.removeEntryLocked(tempID)
	if err != nil {
		c.lastErr = "Failed to send message"
		c.mu.Unlock()
		c.metrics.RecordRollback("send_message")
		c.notifier.Error("Failed to send message")
		return err
	}
	c.entries = insertEntriesAt(c.entries, idx,
		messageEntry{msg: result.UserMessage},
		messageEntry{msg: result.AIMessage},
	)
	c.mu.Unlock()

	c.notifier.Success("Message sent")
	return nil
}

// SubmitFeedback records a like/dislike rating for an assistant message.
// One-phase: no store state changes.
func (c *ChatSession) SubmitFeedback(ctx context.Context, messageID, rating, comment, category string) error {
	err := c.client.SubmitFeedback(ctx, models.Feedback{
		MessageID: messageID,
		Rating:    rating,
		Comment:   comment,
		Category:  category,
	})
	if err != nil {
		c.notifier.Error("Failed to submit feedback. Please try again.")
		return err
	}
	c.notifier.Success("Thanks for your feedback!")
	return nil
}

// removeEntryLocked removes every entry carrying tempID and returns the
// index the first one occupied. Caller holds the lock.
func (c *ChatSession) removeEntryLocked(tempID string) int {
	idx := len(c.entries)
	kept := c.entries[:0]
	for i, e := range c.entries {
		if e.tempID == tempID {
			if i < idx {
				idx = i
			}
			continue
		}
		kept = append(kept, e)
	}
	c.entries = kept
	if idx > len(c.entries) {
		idx = len(c.entries)
	}
	return idx
}

func insertEntriesAt(entries []messageEntry, idx int, add ...messageEntry) []messageEntry {
	if idx < 0 || idx > len(entries) {
		idx = len(entries)
	}
	out := make([]messageEntry, 0, len(entries)+len(add))
	out = append(out, entries[:idx]...)
	out = append(out, add...)
	out = append(out, entries[idx:]...)
	return out
}
