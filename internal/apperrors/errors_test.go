package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestError_Message(t *testing.T) {
	err := &RequestError{Method: http.MethodPut, Path: "/api/projects/p1/settings", Status: 422}
	assert.Contains(t, err.Error(), "PUT")
	assert.Contains(t, err.Error(), "422")
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limited", &RequestError{Status: 429}, true},
		{"server error", &RequestError{Status: 500}, true},
		{"bad gateway", &RequestError{Status: 502}, true},
		{"not found", &RequestError{Status: 404}, false},
		{"unauthorized", &RequestError{Status: 401}, false},
		{"upload throttled", &UploadError{Status: 503}, true},
		{"upload forbidden", &UploadError{Status: 403}, false},
		{"wrapped request error", fmt.Errorf("fetching: %w", &RequestError{Status: 503}), true},
		{"plain error", errors.New("connection refused"), false},
		{"sentinel", ErrNotLoaded, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}
