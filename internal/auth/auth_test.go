package auth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawhaven/pawhaven-server/internal/authz"
	"github.com/pawhaven/pawhaven-server/internal/domain"
	domainerrors "github.com/pawhaven/pawhaven-server/internal/errors"
)

func newTokenService(t *testing.T) *TokenService {
	t.Helper()
	key, err := LoadOrGenerateKey(t.TempDir())
	require.NoError(t, err)
	s, err := NewTokenService(key, 15*time.Minute)
	require.NoError(t, err)
	return s
}

func TestLoadOrGenerateKey_Persists(t *testing.T) {
	dir := t.TempDir()

	first, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Len(t, first, keyLength)

	second, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	info, err := os.Stat(filepath.Join(dir, "auth.key"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadOrGenerateKey_RejectsCorruptKey(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "auth.key"), []byte("abc"), 0o600))

	_, err := LoadOrGenerateKey(dir)
	assert.Error(t, err)
}

func TestTokenService_RoundTrip(t *testing.T) {
	s := newTokenService(t)

	token, err := s.GenerateAccessToken(&domain.User{
		Base:      domain.Base{ID: "usr-2"},
		Role:      domain.RoleShelter,
		ShelterID: "shl-1",
	})
	require.NoError(t, err)

	claims, err := s.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, authz.Principal{UserID: "usr-2", ShelterID: "shl-1", Roles: []domain.Role{domain.RoleShelter}}, claims.Principal())
	assert.Equal(t, "usr-2", claims.Subject)
	assert.NotEmpty(t, claims.TokenID)
}

func TestTokenService_Expired(t *testing.T) {
	s := newTokenService(t)
	token, err := s.GenerateAccessToken(&domain.User{Base: domain.Base{ID: "usr-1"}, Role: domain.RoleUser})
	require.NoError(t, err)

	s.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = s.VerifyAccessToken(token)
	assert.ErrorIs(t, err, domainerrors.ErrTokenExpired)
}

func TestTokenService_RejectsForeignKey(t *testing.T) {
	issuer := newTokenService(t)
	verifier := newTokenService(t)

	token, err := issuer.GenerateAccessToken(&domain.User{Base: domain.Base{ID: "usr-1"}, Role: domain.RoleUser})
	require.NoError(t, err)

	_, err = verifier.VerifyAccessToken(token)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	_, err = verifier.VerifyAccessToken("v4.local.garbage")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}
