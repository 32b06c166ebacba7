package jwtutil

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	token, err := GenerateToken("secret", time.Minute, "user-1", "a@example.com")
	require.NoError(t, err)

	claims, err := ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@example.com", claims.Email)
}

func TestRejectsWrongSecretAndExpiry(t *testing.T) {
	token, err := GenerateToken("secret", time.Minute, "user-1", "")
	require.NoError(t, err)
	_, err = ParseToken("other", token)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	expired, err := GenerateToken("secret", -time.Minute, "user-1", "")
	require.NoError(t, err)
	_, err = ParseToken("secret", expired)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}
