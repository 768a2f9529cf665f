package session

import (
	"context"
	"fmt"
	"time"

	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/apperrors"
	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/models"
)

// CreateChat creates a chat in this project and inserts it at the head of
// the chat list. An empty title gets a timestamp-derived default, matching
// the backend's convention.
func (s *ProjectSession) CreateChat(ctx context.Context, title string) (*models.Chat, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, apperrors.ErrNoSession
	}
	if !s.loaded {
		s.mu.Unlock()
		return nil, apperrors.ErrNotLoaded
	}
	s.creatingChat = true
	s.lastErr = ""
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.creatingChat = false
		s.mu.Unlock()
	}()

	if title == "" {
		title = fmt.Sprintf("Chat #%d", time.Now().UnixMilli()%10000)
	}

	chat, err := s.client.CreateChat(ctx, s.projectID, title)
	if err != nil {
		s.setError("Failed to create chat")
		s.notifier.Error("Failed to create chat")
		return nil, err
	}

	s.mu.Lock()
	if !s.closed {
		s.chats = append([]models.Chat{*chat}, s.chats...)
	}
	s.mu.Unlock()

	s.notifier.Success("Chat created successfully")
	return chat, nil
}

// DeleteChat optimistically removes the chat from the list, then confirms
// with the backend. On failure the chat is restored at its original
// position and exactly one error notification fires.
func (s *ProjectSession) DeleteChat(ctx context.Context, chatID string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return apperrors.ErrNoSession
	}
	idx := -1
	var removed models.Chat
	for i, c := range s.chats {
		if c.ID == chatID {
			idx = i
			removed = c
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return apperrors.ErrNotLoaded
	}
	s.chats = append(s.chats[:idx:idx], s.chats[idx+1:]...)
	s.lastErr = ""
	s.mu.Unlock()

	if err := s.client.DeleteChat(ctx, chatID); err != nil {
		s.mu.Lock()
		if !s.closed {
			s.chats = insertChatAt(s.chats, removed, idx)
			s.lastErr = "Failed to delete chat"
		}
		s.mu.Unlock()
		s.metrics.RecordRollback("delete_chat")
		s.notifier.Error("Failed to delete chat")
		return err
	}

	s.mu.Lock()
	delete(s.chatSessions, chatID)
	s.mu.Unlock()

	s.notifier.Success("Chat deleted successfully")
	return nil
}

// OpenChat loads a chat conversation and returns its session. Repeated
// opens of the same chat share one session.
func (s *ProjectSession) OpenChat(ctx context.Context, chatID string) (*ChatSession, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, apperrors.ErrNoSession
	}
	if cs, ok := s.chatSessions[chatID]; ok {
		s.mu.Unlock()
		return cs, nil
	}
	s.mu.Unlock()

	cs := NewChatSession(s.projectID, chatID, s.client, s.notifier, s.logger)
	cs.metrics = s.metrics
	if err := cs.Load(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, apperrors.ErrNoSession
	}
	if existing, ok := s.chatSessions[chatID]; ok {
		return existing, nil
	}
	s.chatSessions[chatID] = cs
	return cs, nil
}

func (s *ProjectSession) setError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.lastErr = msg
	}
}

func insertChatAt(chats []models.Chat, chat models.Chat, idx int) []models.Chat {
	if idx < 0 || idx > len(chats) {
		idx = len(chats)
	}
	out := make([]models.Chat, 0, len(chats)+1)
	out = append(out, chats[:idx]...)
	out = append(out, chat)
	out = append(out, chats[idx:]...)
	return out
}
