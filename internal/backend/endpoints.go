package backend

import (
	"context"
	"fmt"

	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/models"
)

// ListProjects fetches all projects visible to the caller.
func (c *Client) ListProjects(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	if err := c.Get(ctx, "/api/projects", &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// CreateProject creates a project.
func (c *Client) CreateProject(ctx context.Context, name, description string) (*models.Project, error) {
	body := map[string]string{"name": name, "description": description}
	var project models.Project
	if err := c.Post(ctx, "/api/projects", body, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// DeleteProject deletes a project by id.
func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	return c.Delete(ctx, "/api/projects/"+projectID)
}

// GetProject fetches a single project.
func (c *Client) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	var project models.Project
	if err := c.Get(ctx, "/api/projects/"+projectID, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// ListChats fetches a project's chats.
func (c *Client) ListChats(ctx context.Context, projectID string) ([]models.Chat, error) {
	var chats []models.Chat
	if err := c.Get(ctx, "/api/projects/"+projectID+"/chats", &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

// CreateChat creates a chat within a project.
func (c *Client) CreateChat(ctx context.Context, projectID, title string) (*models.Chat, error) {
	body := map[string]string{"title": title, "project_id": projectID}
	var chat models.Chat
	if err := c.Post(ctx, "/api/chats", body, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

// DeleteChat deletes a chat by id.
func (c *Client) DeleteChat(ctx context.Context, chatID string) error {
	return c.Delete(ctx, "/api/chats/"+chatID)
}

// GetChat fetches a chat with its full message history.
func (c *Client) GetChat(ctx context.Context, chatID string) (*models.ChatWithMessages, error) {
	var chat models.ChatWithMessages
	if err := c.Get(ctx, "/api/chats/"+chatID, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

// SendMessage posts a user message and returns the echoed user message
// plus the generated assistant message.
func (c *Client) SendMessage(ctx context.Context, projectID, chatID, content string) (*models.SendMessageResult, error) {
	path := fmt.Sprintf("/api/projects/%s/chats/%s/messages", projectID, chatID)
	body := map[string]string{"content": content}
	var result models.SendMessageResult
	if err := c.Post(ctx, path, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SubmitFeedback records a rating for an assistant message.
func (c *Client) SubmitFeedback(ctx context.Context, fb models.Feedback) error {
	return c.Post(ctx, "/api/feedback", fb, nil)
}

// ListDocuments fetches a project's document collection.
func (c *Client) ListDocuments(ctx context.Context, projectID string) ([]models.ProjectDocument, error) {
	var docs []models.ProjectDocument
	if err := c.Get(ctx, "/api/projects/"+projectID+"/files", &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// RequestUploadTarget asks the backend for a pre-authorized storage
// location for a file upload.
func (c *Client) RequestUploadTarget(ctx context.Context, projectID, filename string, size int64, fileType string) (*models.UploadTarget, error) {
	body := map[string]any{
		"filename":  filename,
		"file_size": size,
		"file_type": fileType,
	}
	var target models.UploadTarget
	if err := c.Post(ctx, "/api/projects/"+projectID+"/files/upload-url", body, &target); err != nil {
		return nil, err
	}
	return &target, nil
}

// ConfirmUpload tells the backend the bytes landed in storage; the
// returned document is typically still in a non-terminal status.
func (c *Client) ConfirmUpload(ctx context.Context, projectID, s3Key string) (*models.ProjectDocument, error) {
	body := map[string]string{"s3_key": s3Key}
	var doc models.ProjectDocument
	if err := c.Post(ctx, "/api/projects/"+projectID+"/files/confirm", body, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// DeleteDocument removes a document from a project's knowledge base.
func (c *Client) DeleteDocument(ctx context.Context, projectID, documentID string) error {
	return c.Delete(ctx, "/api/projects/"+projectID+"/files/"+documentID)
}

// AddURLDocument submits a URL for ingestion and returns the new document.
func (c *Client) AddURLDocument(ctx context.Context, projectID, url string) (*models.ProjectDocument, error) {
	body := map[string]string{"url": url}
	var doc models.ProjectDocument
	if err := c.Post(ctx, "/api/projects/"+projectID+"/urls", body, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListChunks fetches the retrievable chunks of a processed document.
func (c *Client) ListChunks(ctx context.Context, projectID, documentID string) ([]models.Chunk, error) {
	var chunks []models.Chunk
	if err := c.Get(ctx, "/api/projects/"+projectID+"/files/"+documentID+"/chunks", &chunks); err != nil {
		return nil, err
	}
	return chunks, nil
}

// GetSettings fetches a project's retrieval settings.
func (c *Client) GetSettings(ctx context.Context, projectID string) (*models.ProjectSettings, error) {
	var settings models.ProjectSettings
	if err := c.Get(ctx, "/api/projects/"+projectID+"/settings", &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// ReplaceSettings publishes a full settings object and returns the
// backend's authoritative echo.
func (c *Client) ReplaceSettings(ctx context.Context, projectID string, settings models.ProjectSettings) (*models.ProjectSettings, error) {
	var echoed models.ProjectSettings
	if err := c.Put(ctx, "/api/projects/"+projectID+"/settings", settings, &echoed); err != nil {
		return nil, err
	}
	return &echoed, nil
}
