package tokensource

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/apperrors"
)

func TestStatic(t *testing.T) {
	tok, err := Static("abc").Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	_, err = Static("").Token(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrNoToken)
}

func TestEnv(t *testing.T) {
	t.Setenv("TEST_RETRIVIS_TOKEN", "  from-env\n")
	tok, err := Env{Key: "TEST_RETRIVIS_TOKEN"}.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "from-env", tok)

	_, err = Env{Key: "TEST_RETRIVIS_TOKEN_UNSET"}.Token(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrNoToken)
}

func TestNone(t *testing.T) {
	_, err := None{}.Token(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrNoToken)
}

func writeTokenFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestFile_OpaqueToken(t *testing.T) {
	path := writeTokenFile(t, "opaque-token\n")
	src := NewFile(path)

	tok, err := src.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "opaque-token", tok)
}

func TestFile_CachesUntilExpiry(t *testing.T) {
	path := writeTokenFile(t, signedToken(t, time.Now().Add(time.Hour)))
	src := NewFile(path)

	first, err := src.Token(context.Background())
	require.NoError(t, err)

	// rewrite the file: the cached token must still be served
	require.NoError(t, os.WriteFile(path, []byte("replaced"), 0o600))
	second, err := src.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFile_ExpiredJWTNotCached(t *testing.T) {
	path := writeTokenFile(t, signedToken(t, time.Now().Add(-time.Minute)))
	src := NewFile(path)

	// an expired token is returned once so the backend can 401
	first, err := src.Token(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	// but it is not cached: a fresh file is picked up immediately
	fresh := signedToken(t, time.Now().Add(time.Hour))
	require.NoError(t, os.WriteFile(path, []byte(fresh), 0o600))
	second, err := src.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fresh, second)
}

func TestFile_Missing(t *testing.T) {
	src := NewFile(filepath.Join(t.TempDir(), "nope"))
	_, err := src.Token(context.Background())
	assert.Error(t, err)
}

func TestFile_Empty(t *testing.T) {
	src := NewFile(writeTokenFile(t, "   \n"))
	_, err := src.Token(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrNoToken)
}
