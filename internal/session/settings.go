package session

import (
	"context"

	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/apperrors"
	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/models"
)

// UpdateDraft shallow-merges a partial settings edit into the current
// draft. No network call happens here; the draft stays local until
// PublishSettings. If no settings are loaded yet the update is logged
// and ignored rather than crashing the view.
func (s *ProjectSession) UpdateDraft(patch models.SettingsPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	base := s.draft
	if base == nil {
		base = s.settings
	}
	if base == nil {
		s.logger.Warn().Msg("draft update ignored: settings not loaded")
		return
	}
	merged := patch.Apply(*base)
	s.draft = &merged
}

// Draft returns a copy of the current draft, or nil when there are no
// unpublished edits.
func (s *ProjectSession) Draft() *models.ProjectSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyPtr(s.draft)
}

// Settings returns a copy of the last published settings.
func (s *ProjectSession) Settings() *models.ProjectSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyPtr(s.settings)
}

// PublishSettings replaces the project's settings with the current draft
// in a single atomic call. On success the server's authoritative echo
// replaces both the stored settings and the draft; on failure the draft
// is kept so the user's edits survive.
//
// vector_weight + keyword_weight summing to 1 is not enforced here; the
// backend owns that validation.
func (s *ProjectSession) PublishSettings(ctx context.Context) (*models.ProjectSettings, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, apperrors.ErrNoSession
	}
	if s.settings == nil && s.draft == nil {
		s.mu.Unlock()
		return nil, apperrors.ErrNotLoaded
	}
	if s.publishing {
		s.mu.Unlock()
		return nil, apperrors.ErrNotLoaded
	}
	payload := s.draft
	if payload == nil {
		payload = s.settings
	}
	body := *payload
	s.publishing = true
	s.lastErr = ""
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.publishing = false
		s.mu.Unlock()
	}()

	echoed, err := s.client.ReplaceSettings(ctx, s.projectID, body)
	if err != nil {
		s.setError("Failed to update settings")
		s.notifier.Error("Failed to update settings")
		return nil, err
	}

	s.mu.Lock()
	if !s.closed {
		s.settings = copyPtr(echoed)
		s.draft = nil
	}
	s.mu.Unlock()

	s.notifier.Success("Settings updated successfully")
	return echoed, nil
}
