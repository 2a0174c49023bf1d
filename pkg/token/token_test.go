package token_test

import (
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authenticare/location-agent/pkg/encryption"
	"github.com/authenticare/location-agent/pkg/file"
	"github.com/authenticare/location-agent/pkg/token"
)

func newTestManager(t *testing.T) token.ManagerInterface {
	t.Helper()

	dir := t.TempDir()
	fileOps := file.NewFileService()

	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	keyPath := filepath.Join(dir, "aes.key")
	require.NoError(t, os.WriteFile(keyPath, key, 0600))

	manager := encryption.NewEncryptionManager(fileOps)
	require.NoError(t, manager.Initialize(keyPath))

	return token.NewManager(filepath.Join(dir, "tokens.enc"), fileOps, manager)
}

func signedToken(t *testing.T, expiry time.Time) string {
	t.Helper()
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": expiry.Unix()})
	signed, err := raw.SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return signed
}

// TestManager_LoadMissingFile verifies a missing token file yields empty tokens.
func TestManager_LoadMissingFile(t *testing.T) {
	m := newTestManager(t)

	assert.NoError(t, m.LoadTokens())
	assert.Equal(t, "", m.AccessToken())

	refresh, err := m.RefreshToken()
	assert.NoError(t, err)
	assert.Equal(t, "", refresh)
}

// TestManager_SaveLoadRoundTrip verifies tokens survive an encrypted save and reload.
func TestManager_SaveLoadRoundTrip(t *testing.T) {
	m := newTestManager(t)

	access := signedToken(t, time.Now().Add(time.Hour))
	assert.NoError(t, m.SaveTokens(access, "refresh-1"))

	assert.NoError(t, m.LoadTokens())
	assert.Equal(t, access, m.AccessToken())

	refresh, err := m.RefreshToken()
	assert.NoError(t, err)
	assert.Equal(t, "refresh-1", refresh)
}

// TestManager_ExpiredTokenRejected verifies an expired access token is not handed out.
func TestManager_ExpiredTokenRejected(t *testing.T) {
	m := newTestManager(t)

	expired := signedToken(t, time.Now().Add(-time.Hour))
	assert.NoError(t, m.SaveTokens(expired, "refresh-1"))

	valid, err := m.IsAccessTokenValid()
	assert.NoError(t, err)
	assert.False(t, valid)
	assert.Equal(t, "", m.AccessToken())
}

// TestManager_MalformedTokenTreatedAsInvalid verifies garbage tokens do not error out.
func TestManager_MalformedTokenTreatedAsInvalid(t *testing.T) {
	m := newTestManager(t)

	assert.NoError(t, m.SaveTokens("not-a-jwt", ""))

	valid, err := m.IsAccessTokenValid()
	assert.NoError(t, err)
	assert.False(t, valid)
}
