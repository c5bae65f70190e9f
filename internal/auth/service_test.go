package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	s := NewService(nil, "test-secret")

	token, err := s.issueToken("user_123")
	require.NoError(t, err)

	userID, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user_123", userID)
}

func TestTokenRejectsOtherSecret(t *testing.T) {
	token, err := NewService(nil, "one").issueToken("user_123")
	require.NoError(t, err)

	_, err = NewService(nil, "two").ValidateToken(token)
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	s := NewService(nil, "test-secret")
	s.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	token, err := s.issueToken("user_123")
	require.NoError(t, err)

	s.now = time.Now
	_, err = s.ValidateToken(token)
	assert.Error(t, err)
}

func TestStudioToken(t *testing.T) {
	s := NewService(nil, "test-secret")

	token, err := s.IssueStudioToken("studio_abc", "user_1", RoleHost)
	require.NoError(t, err)

	claims, err := s.ValidateStudioToken(token)
	require.NoError(t, err)
	assert.Equal(t, "studio_abc", claims.StudioID)
	assert.Equal(t, RoleHost, claims.Role)
	assert.Equal(t, "user_1", claims.Subject)
}

func TestPassphrase(t *testing.T) {
	open, err := HashPassphrase("")
	require.NoError(t, err)
	assert.Empty(t, open)
	assert.True(t, CheckPassphrase(open, "anything"))

	hash, err := HashPassphrase("great circles")
	require.NoError(t, err)
	assert.True(t, CheckPassphrase(hash, "great circles"))
	assert.False(t, CheckPassphrase(hash, "small circles"))
}

func TestTokenAudiencesDoNotMix(t *testing.T) {
	s := NewService(nil, "test-secret")

	studioToken, err := s.IssueStudioToken("studio_abc", "user_1", RoleViewer)
	require.NoError(t, err)
	_, err = s.ValidateToken(studioToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	session, err := s.issueToken("user_1")
	require.NoError(t, err)
	_, err = s.ValidateStudioToken(session)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestStudioTokenRejectsUnknownRole(t *testing.T) {
	s := NewService(nil, "test-secret")

	token, err := s.IssueStudioToken("studio_abc", "user_1", "admin")
	require.NoError(t, err)
	_, err = s.ValidateStudioToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ada@example.com", normalizeEmail("  Ada@Example.COM "))
}
