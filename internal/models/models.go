// Package models holds the domain entities exchanged with the retrivis backend.
// Field names and json tags mirror the backend's wire format exactly.
package models

import (
	"strings"
	"time"
)

// Project is a user-owned workspace grouping chats and documents.
// Projects are immutable after creation in this layer.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ClerkID     string    `json:"clerk_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Chat is a conversation owned by exactly one project.
type Chat struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	ProjectID string    `json:"project_id"`
	ClerkID   string    `json:"clerk_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single chat turn. Citations are opaque references into
// ingested documents.
type Message struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chat_id"`
	Content   string    `json:"content"`
	Role      string    `json:"role"`
	ClerkID   string    `json:"clerk_id"`
	CreatedAt time.Time `json:"created_at"`
	Citations []string  `json:"citations"`
}

// ChatWithMessages is a chat plus its full ordered message history.
type ChatWithMessages struct {
	Chat
	Messages []Message `json:"messages"`
}

// SendMessageResult is the backend's response to posting a chat message:
// the echoed user message and the generated assistant message.
type SendMessageResult struct {
	UserMessage Message `json:"userMessage"`
	AIMessage   Message `json:"aiMessage"`
}

// Document source types.
const (
	SourceTypeFile = "file"
	SourceTypeURL  = "url"
)

// Terminal processing statuses. Every other value means the ingestion
// pipeline is still working and the document is subject to polling.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// IsTerminalStatus reports whether a processing status needs no further
// automatic refresh.
func IsTerminalStatus(status string) bool {
	return status == StatusCompleted || status == StatusFailed
}

// ProjectDocument is an ingested file or URL in a project's knowledge base.
type ProjectDocument struct {
	ID                string         `json:"id"`
	ProjectID         string         `json:"project_id"`
	Filename          string         `json:"filename"`
	S3Key             string         `json:"s3_key"`
	FileSize          int64          `json:"file_size"`
	FileType          string         `json:"file_type"`
	ProcessingStatus  string         `json:"processing_status,omitempty"`
	TaskID            string         `json:"task_id,omitempty"`
	SourceType        string         `json:"source_type,omitempty"`
	SourceURL         string         `json:"source_url,omitempty"`
	ProcessingDetails map[string]any `json:"processing_details,omitempty"`
	ClerkID           string         `json:"clerk_id"`
	CreatedAt         time.Time      `json:"created_at"`
}

// IsTerminal reports whether the document's processing has finished,
// successfully or not.
func (d *ProjectDocument) IsTerminal() bool {
	return IsTerminalStatus(d.ProcessingStatus)
}

// ProjectSettings holds per-project retrieval and generation parameters.
// vector_weight + keyword_weight summing to 1 is a backend concern; this
// layer merges partial edits without enforcing it.
type ProjectSettings struct {
	ID                  string    `json:"id,omitempty"`
	ProjectID           string    `json:"project_id,omitempty"`
	EmbeddingModel      string    `json:"embedding_model"`
	RAGStrategy         string    `json:"rag_strategy"`
	AgentType           string    `json:"agent_type"`
	ChunksPerSearch     int       `json:"chunks_per_search"`
	FinalContextSize    int       `json:"final_context_size"`
	SimilarityThreshold float64   `json:"similarity_threshold"`
	NumberOfQueries     int       `json:"number_of_queries"`
	RerankingEnabled    bool      `json:"reranking_enabled"`
	RerankingModel      string    `json:"reranking_model"`
	VectorWeight        float64   `json:"vector_weight"`
	KeywordWeight       float64   `json:"keyword_weight"`
	CreatedAt           time.Time `json:"created_at,omitempty"`
}

// SettingsPatch is a partial settings edit. Nil fields are left untouched
// by the draft merge.
type SettingsPatch struct {
	EmbeddingModel      *string  `json:"embedding_model,omitempty"`
	RAGStrategy         *string  `json:"rag_strategy,omitempty"`
	AgentType           *string  `json:"agent_type,omitempty"`
	ChunksPerSearch     *int     `json:"chunks_per_search,omitempty"`
	FinalContextSize    *int     `json:"final_context_size,omitempty"`
	SimilarityThreshold *float64 `json:"similarity_threshold,omitempty"`
	NumberOfQueries     *int     `json:"number_of_queries,omitempty"`
	RerankingEnabled    *bool    `json:"reranking_enabled,omitempty"`
	RerankingModel      *string  `json:"reranking_model,omitempty"`
	VectorWeight        *float64 `json:"vector_weight,omitempty"`
	KeywordWeight       *float64 `json:"keyword_weight,omitempty"`
}

// Apply shallow-merges the patch into a copy of s and returns the copy.
func (p *SettingsPatch) Apply(s ProjectSettings) ProjectSettings {
	if p.EmbeddingModel != nil {
		s.EmbeddingModel = *p.EmbeddingModel
	}
	if p.RAGStrategy != nil {
		s.RAGStrategy = *p.RAGStrategy
	}
	if p.AgentType != nil {
		s.AgentType = *p.AgentType
	}
	if p.ChunksPerSearch != nil {
		s.ChunksPerSearch = *p.ChunksPerSearch
	}
	if p.FinalContextSize != nil {
		s.FinalContextSize = *p.FinalContextSize
	}
	if p.SimilarityThreshold != nil {
		s.SimilarityThreshold = *p.SimilarityThreshold
	}
	if p.NumberOfQueries != nil {
		s.NumberOfQueries = *p.NumberOfQueries
	}
	if p.RerankingEnabled != nil {
		s.RerankingEnabled = *p.RerankingEnabled
	}
	if p.RerankingModel != nil {
		s.RerankingModel = *p.RerankingModel
	}
	if p.VectorWeight != nil {
		s.VectorWeight = *p.VectorWeight
	}
	if p.KeywordWeight != nil {
		s.KeywordWeight = *p.KeywordWeight
	}
	return s
}

// UploadTarget is a pre-authorized storage location for a direct file upload.
type UploadTarget struct {
	UploadURL string `json:"upload_url"`
	S3Key     string `json:"s3_key"`
}

// Feedback ratings.
const (
	RatingLike    = "like"
	RatingDislike = "dislike"
)

// Feedback is a user's rating of an assistant message.
type Feedback struct {
	MessageID string `json:"message_id"`
	Rating    string `json:"rating"`
	Comment   string `json:"comment,omitempty"`
	Category  string `json:"category,omitempty"`
}

// Chunk is one retrievable piece of a processed document.
type Chunk struct {
	ID      string   `json:"id"`
	Type    []string `json:"type"`
	Page    int      `json:"page"`
	Chars   int      `json:"chars"`
	Content string   `json:"content"`
}

// FilterProjects returns the projects whose name or description contains
// the query, case-insensitively. An empty query matches everything.
func FilterProjects(projects []Project, query string) []Project {
	if query == "" {
		return projects
	}
	q := strings.ToLower(query)
	out := make([]Project, 0, len(projects))
	for _, p := range projects {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q) {
			out = append(out, p)
		}
	}
	return out
}

// FilterChunks returns the chunks matching a type filter ("" or "all"
// matches any type) and a case-insensitive content search.
func FilterChunks(chunks []Chunk, typeFilter, query string) []Chunk {
	q := strings.ToLower(query)
	out := make([]Chunk, 0, len(chunks))
	for _, c := range chunks {
		if typeFilter != "" && typeFilter != "all" && !containsType(c.Type, typeFilter) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(c.Content), q) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func containsType(types []string, want string) bool {
	for _, t := range types {
		if t == want {
			return true
		}
	}
	return false
}
