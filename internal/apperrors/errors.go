// Package apperrors provides structured error types for the retrivis client.
package apperrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for local precondition failures.
var (
	ErrNotLoaded = errors.New("entity not loaded")
	ErrNoSession = errors.New("no active session")
	ErrNoToken   = errors.New("no auth token available")
)

// RequestError represents a non-2xx response from a backend JSON API call.
// The backend's error body is never interpreted; the status code is the
// only error signal this layer carries.
type RequestError struct {
	Method string
	Path   string
	Status int
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("backend request failed: %s %s (status %d)", e.Method, e.Path, e.Status)
}

// UploadError represents a non-2xx response from a direct byte transfer
// to object storage.
type UploadError struct {
	Status int
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("storage upload failed (status %d)", e.Status)
}

// IsRetryable returns true if the error is likely transient and worth retrying.
// Only read paths retry; mutations settle once and roll back on failure.
func IsRetryable(err error) bool {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		switch reqErr.Status {
		case 429, 500, 502, 503, 504:
			return true
		}
	}
	var upErr *UploadError
	if errors.As(err, &upErr) {
		switch upErr.Status {
		case 429, 500, 502, 503, 504:
			return true
		}
	}
	return false
}
