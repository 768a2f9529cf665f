package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/apperrors"
	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/models"
)

// UploadFile is one file handed to the upload pipeline.
type UploadFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// UploadFailure names a file whose pipeline failed and why.
type UploadFailure struct {
	Name string
	Err  error
}

// UploadResult partitions a multi-file upload into successes and failures.
type UploadResult struct {
	Documents []models.ProjectDocument
	Failures  []UploadFailure
}

// UploadFiles runs one three-step pipeline per file (request a write
// target, transfer the bytes to storage, confirm with the backend), all
// started concurrently. Each file's pipeline is isolated: one failure
// cancels nothing else. The store gains exactly the documents that
// succeeded, prepended to the prior collection, and every failure is
// reported by file name.
func (s *ProjectSession) UploadFiles(ctx context.Context, files []UploadFile) (*UploadResult, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, apperrors.ErrNoSession
	}
	if !s.loaded {
		s.mu.Unlock()
		return nil, apperrors.ErrNotLoaded
	}
	s.lastErr = ""
	s.mu.Unlock()

	type outcome struct {
		doc *models.ProjectDocument
		err error
	}
	outcomes := make([]outcome, len(files))

	var wg sync.WaitGroup
	for i, f := range files {
		wg.Add(1)
		go func(i int, f UploadFile) {
			defer wg.Done()
			doc, err := s.uploadOne(ctx, f)
			outcomes[i] = outcome{doc: doc, err: err}
		}(i, f)
	}
	wg.Wait()

	result := &UploadResult{}
	for i, o := range outcomes {
		if o.err != nil {
			result.Failures = append(result.Failures, UploadFailure{Name: files[i].Name, Err: o.err})
			s.metrics.RecordUpload("failure")
			continue
		}
		result.Documents = append(result.Documents, *o.doc)
		s.metrics.RecordUpload("success")
	}

	if len(result.Documents) > 0 {
		s.mu.Lock()
		if !s.closed {
			s.documents = append(append([]models.ProjectDocument(nil), result.Documents...), s.documents...)
		}
		s.mu.Unlock()
		s.reevaluatePoller()
		s.notifier.Success(fmt.Sprintf("Uploaded %d file(s)", len(result.Documents)))
	}
	for _, f := range result.Failures {
		s.notifier.Error(fmt.Sprintf("Failed to upload %s", f.Name))
	}

	s.logger.Info().
		Int("succeeded", len(result.Documents)).
		Int("failed", len(result.Failures)).
		Msg("upload batch settled")

	return result, nil
}

// uploadOne runs a single file's pipeline.
func (s *ProjectSession) uploadOne(ctx context.Context, f UploadFile) (*models.ProjectDocument, error) {
	target, err := s.client.RequestUploadTarget(ctx, s.projectID, f.Name, int64(len(f.Data)), f.ContentType)
	if err != nil {
		return nil, fmt.Errorf("requesting upload target for %s: %w", f.Name, err)
	}
	if err := s.client.UploadBytes(ctx, target.UploadURL, f.ContentType, f.Data); err != nil {
		return nil, fmt.Errorf("transferring %s: %w", f.Name, err)
	}
	doc, err := s.client.ConfirmUpload(ctx, s.projectID, target.S3Key)
	if err != nil {
		return nil, fmt.Errorf("confirming %s: %w", f.Name, err)
	}
	return doc, nil
}
