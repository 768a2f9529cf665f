// Package tokensource supplies bearer tokens for backend API calls.
//
// The identity provider lives outside this repository; callers inject a
// Source rather than reading tokens from ambient globals, which keeps the
// session layer testable.
package tokensource

import (
	"context"
	"os"
	"strings"

	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/apperrors"
)

// Source yields the current bearer token. Implementations may refresh
// or cache internally; callers treat every returned token as short-lived
// and re-fetch on each request.
type Source interface {
	Token(ctx context.Context) (string, error)
}

// Static is a fixed token, useful for tests and one-shot CLI invocations.
type Static string

func (s Static) Token(_ context.Context) (string, error) {
	if s == "" {
		return "", apperrors.ErrNoToken
	}
	return string(s), nil
}

// Env reads the token from an environment variable on every call.
type Env struct {
	Key string
}

func (e Env) Token(_ context.Context) (string, error) {
	tok := strings.TrimSpace(os.Getenv(e.Key))
	if tok == "" {
		return "", apperrors.ErrNoToken
	}
	return tok, nil
}

// None always fails. Used when a command genuinely needs no auth.
type None struct{}

func (None) Token(_ context.Context) (string, error) {
	return "", apperrors.ErrNoToken
}
