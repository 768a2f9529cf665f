package session

import (
	"context"

	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/apperrors"
	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/models"
)

// DeleteDocument optimistically removes the document from the collection,
// then confirms with the backend. On failure the document is restored at
// its original position.
func (s *ProjectSession) DeleteDocument(ctx context.Context, documentID string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return apperrors.ErrNoSession
	}
	idx := -1
	var removed models.ProjectDocument
	for i, d := range s.documents {
		if d.ID == documentID {
			idx = i
			removed = d
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return apperrors.ErrNotLoaded
	}
	s.documents = append(s.documents[:idx:idx], s.documents[idx+1:]...)
	s.lastErr = ""
	s.mu.Unlock()
	s.reevaluatePoller()

	if err := s.client.DeleteDocument(ctx, s.projectID, documentID); err != nil {
		s.mu.Lock()
		if !s.closed {
			s.documents = insertDocumentAt(s.documents, removed, idx)
			s.lastErr = "Failed to delete document"
		}
		s.mu.Unlock()
		s.reevaluatePoller()
		s.metrics.RecordRollback("delete_document")
		s.notifier.Error("Failed to delete document")
		return err
	}

	s.chunks.Delete(documentID)
	s.notifier.Success("Document deleted successfully")
	return nil
}

// AddURLDocument submits a URL for ingestion and prepends the returned
// document. The document usually arrives in a non-terminal status, which
// activates the poller.
func (s *ProjectSession) AddURLDocument(ctx context.Context, url string) (*models.ProjectDocument, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, apperrors.ErrNoSession
	}
	s.lastErr = ""
	s.mu.Unlock()

	doc, err := s.client.AddURLDocument(ctx, s.projectID, url)
	if err != nil {
		s.setError("Failed to add URL")
		s.notifier.Error("Failed to add URL")
		return nil, err
	}

	s.mu.Lock()
	if !s.closed {
		s.documents = append([]models.ProjectDocument{*doc}, s.documents...)
	}
	s.mu.Unlock()
	s.reevaluatePoller()

	s.notifier.Success("URL added to knowledge base")
	return doc, nil
}

// DocumentChunks fetches the retrievable chunks of a processed document.
// Listings are cached per document so reopening the chunks viewer does
// not refetch; deleting the document drops its cache entry.
func (s *ProjectSession) DocumentChunks(ctx context.Context, documentID string) ([]models.Chunk, error) {
	if chunks, ok := s.chunks.Get(documentID); ok {
		return chunks, nil
	}
	chunks, err := s.client.ListChunks(ctx, s.projectID, documentID)
	if err != nil {
		return nil, err
	}
	s.chunks.Put(documentID, chunks)
	return chunks, nil
}

func insertDocumentAt(docs []models.ProjectDocument, doc models.ProjectDocument, idx int) []models.ProjectDocument {
	if idx < 0 || idx > len(docs) {
		idx = len(docs)
	}
	out := make([]models.ProjectDocument, 0, len(docs)+1)
	out = append(out, docs[:idx]...)
	out = append(out, doc)
	out = append(out, docs[idx:]...)
	return out
}
