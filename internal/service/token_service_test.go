package service

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService() *TokenService {
	return NewTokenService("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
}

func TestTokenService_AccessRoundtrip(t *testing.T) {
	svc := newTestTokenService()
	userID := uuid.New()

	token, err := svc.IssueAccessToken(userID, "alice")
	require.NoError(t, err)

	identity, err := svc.Verify(token, PurposeAccess)
	require.NoError(t, err)
	assert.Equal(t, userID, identity.UserID)
	assert.Equal(t, "alice", identity.Username)
}

func TestTokenService_RefreshRoundtrip(t *testing.T) {
	svc := newTestTokenService()
	userID := uuid.New()

	token, err := svc.IssueRefreshToken(userID, "alice")
	require.NoError(t, err)

	identity, err := svc.Verify(token, PurposeRefresh)
	require.NoError(t, err)
	assert.Equal(t, userID, identity.UserID)
}

func TestTokenService_PurposesDoNotCross(t *testing.T) {
	svc := newTestTokenService()
	userID := uuid.New()

	access, err := svc.IssueAccessToken(userID, "alice")
	require.NoError(t, err)
	refresh, err := svc.IssueRefreshToken(userID, "alice")
	require.NoError(t, err)

	_, err = svc.Verify(access, PurposeRefresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = svc.Verify(refresh, PurposeAccess)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenService_Expired(t *testing.T) {
	svc := NewTokenService("access-secret", "refresh-secret", -time.Minute, -time.Minute)

	token, err := svc.IssueAccessToken(uuid.New(), "alice")
	require.NoError(t, err)

	_, err = svc.Verify(token, PurposeAccess)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.False(t, errors.Is(err, ErrTokenInvalid))
}

func TestTokenService_WrongSecret(t *testing.T) {
	svc := newTestTokenService()
	other := NewTokenService("other-access", "other-refresh", 15*time.Minute, 7*24*time.Hour)

	token, err := other.IssueAccessToken(uuid.New(), "alice")
	require.NoError(t, err)

	_, err = svc.Verify(token, PurposeAccess)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenService_Malformed(t *testing.T) {
	svc := newTestTokenService()

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := svc.Verify(token, PurposeAccess)
		assert.ErrorIs(t, err, ErrTokenInvalid, "token %q", token)
	}
}
