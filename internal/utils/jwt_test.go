package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	manager := SessionTokenManager{Secret: []byte("test-secret"), Issuer: "helpdesk"}
	sessionID := uuid.New()

	token, err := manager.Issue(sessionID, time.Now().Add(time.Hour))
	require.NoError(t, err)

	parsed, err := manager.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, sessionID, parsed)
}

func TestSessionTokenRejectsBadInput(t *testing.T) {
	manager := SessionTokenManager{Secret: []byte("test-secret"), Issuer: "helpdesk"}

	_, err := manager.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// A token signed under a different secret must not parse.
	other := SessionTokenManager{Secret: []byte("other-secret"), Issuer: "helpdesk"}
	token, err := other.Issue(uuid.New(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, err = manager.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionTokenRejectsExpired(t *testing.T) {
	manager := SessionTokenManager{Secret: []byte("test-secret"), Issuer: "helpdesk"}

	token, err := manager.Issue(uuid.New(), time.Now().Add(-time.Minute))
	require.NoError(t, err)
	_, err = manager.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@example.com", NormalizeEmail("  Alice@Example.COM "))
	assert.Equal(t, "alice@example.com", NormalizeEmail("alice@example.com"))
}
