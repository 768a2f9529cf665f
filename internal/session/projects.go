package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/apperrors"
	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/backend"
	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/metrics"
	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/models"
	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/notify"
)

// ProjectList is the projects-overview view: the full project list with
// optimistic create and delete.
type ProjectList struct {
	client   *backend.Client
	notifier notify.Notifier
	metrics  *metrics.Metrics
	logger   zerolog.Logger

	mu       sync.Mutex
	loaded   bool
	creating bool
	lastErr  string
	projects []models.Project
}

// NewProjectList creates the projects-overview state.
func NewProjectList(client *backend.Client, notifier notify.Notifier, logger zerolog.Logger) *ProjectList {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &ProjectList{
		client:   client,
		notifier: notifier,
		logger:   logger.With().Str("component", "projects").Logger(),
	}
}

// SetMetrics attaches a metrics recorder.
func (l *ProjectList) SetMetrics(m *metrics.Metrics) {
	l.metrics = m
}

// Load fetches the project list.
func (l *ProjectList) Load(ctx context.Context) error {
	projects, err := l.client.ListProjects(ctx)
	if err != nil {
		l.mu.Lock()
		l.lastErr = "Failed to load projects"
		l.mu.Unlock()
		l.notifier.Error("Failed to load projects")
		return err
	}

	l.mu.Lock()
	l.projects = projects
	l.loaded = true
	l.lastErr = ""
	l.mu.Unlock()
	return nil
}

// Projects returns a copy of the project list, optionally filtered by a
// case-insensitive name/description search.
func (l *ProjectList) Projects(query string) []models.Project {
	l.mu.Lock()
	projects := append([]models.Project(nil), l.projects...)
	l.mu.Unlock()
	return models.FilterProjects(projects, query)
}

// LastError returns the latest user-visible error, if any.
func (l *ProjectList) LastError() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastErr
}

// Create creates a project and inserts it at the head of the list.
func (l *ProjectList) Create(ctx context.Context, name, description string) (*models.Project, error) {
	l.mu.Lock()
	if !l.loaded {
		l.mu.Unlock()
		return nil, apperrors.ErrNotLoaded
	}
	l.creating = true
	l.lastErr = ""
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.creating = false
		l.mu.Unlock()
	}()

	project, err := l.client.CreateProject(ctx, name, description)
	if err != nil {
		l.mu.Lock()
		l.lastErr = "Failed to create project"
		l.mu.Unlock()
		l.notifier.Error("Failed to create project")
		return nil, err
	}

	l.mu.Lock()
	l.projects = append([]models.Project{*project}, l.projects...)
	l.mu.Unlock()

	l.notifier.Success("Project created successfully!")
	return project, nil
}

// Delete optimistically removes a project from the list, restoring it at
// its original position if the backend refuses.
func (l *ProjectList) Delete(ctx context.Context, projectID string) error {
	l.mu.Lock()
	idx := -1
	var removed models.Project
	for i, p := range l.projects {
		if p.ID == projectID {
			idx = i
			removed = p
			break
		}
	}
	if idx < 0 {
		l.mu.Unlock()
		return apperrors.ErrNotLoaded
	}
	l.projects = append(l.projects[:idx:idx], l.projects[idx+1:]...)
	l.lastErr = ""
	l.mu.Unlock()

	if err := l.client.DeleteProject(ctx, projectID); err != nil {
		l.mu.Lock()
		l.projects = insertProjectAt(l.projects, removed, idx)
		l.lastErr = "Failed to delete project"
		l.mu.Unlock()
		l.metrics.RecordRollback("delete_project")
		l.notifier.Error("Failed to delete project")
		return err
	}

	l.notifier.Success("Project deleted successfully!")
	return nil
}

func insertProjectAt(projects []models.Project, project models.Project, idx int) []models.Project {
	if idx < 0 || idx > len(projects) {
		idx = len(projects)
	}
	out := make([]models.Project, 0, len(projects)+1)
	out = append(out, projects[:idx]...)
	out = append(out, project)
	out = append(out, projects[idx:]...)
	return out
}
