package tokensource

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/apperrors"
)

// expiryLeeway is subtracted from a JWT's exp claim so we re-read the
// file slightly before the token actually lapses.
const expiryLeeway = 30 * time.Second

// opaqueTTL is how long a non-JWT token is cached before the file is
// read again.
const opaqueTTL = time.Minute

// File reads a bearer token from a file, caching it until it expires.
// If the token is a JWT, its exp claim drives the cache lifetime; the
// signature is not verified (verification is the backend's job). Opaque
// tokens are cached for a fixed short interval.
type File struct {
	Path string

	mu        sync.Mutex
	cached    string
	expiresAt time.Time
}

// NewFile creates a file-backed token source.
func NewFile(path string) *File {
	return &File{Path: path}
}

func (f *File) Token(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cached != "" && time.Now().Before(f.expiresAt) {
		return f.cached, nil
	}

	raw, err := os.ReadFile(f.Path)
	if err != nil {
		return "", fmt.Errorf("reading token file: %w", err)
	}
	tok := strings.TrimSpace(string(raw))
	if tok == "" {
		return "", apperrors.ErrNoToken
	}

	f.cached = tok
	f.expiresAt = cacheDeadline(tok)
	return tok, nil
}

// cacheDeadline decides how long a freshly read token may be served from
// cache.
func cacheDeadline(tok string) time.Time {
	exp, ok := jwtExpiry(tok)
	if !ok {
		return time.Now().Add(opaqueTTL)
	}
	deadline := exp.Add(-expiryLeeway)
	if deadline.Before(time.Now()) {
		// Already expired (or about to): don't cache, force a re-read
		// on the next call. The stale token is still returned once so
		// the backend produces its usual 401.
		return time.Now()
	}
	return deadline
}

// jwtExpiry extracts the exp claim from a JWT without verifying it.
func jwtExpiry(tok string) (time.Time, bool) {
	parser := jwt.NewParser()
	claims := jwt.RegisteredClaims{}
	if _, _, err := parser.ParseUnverified(tok, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
