package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("topsecret")
	require.NoError(t, err)
	assert.NotEqual(t, "topsecret", hash)

	assert.True(t, CheckPassword(hash, "topsecret"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("not-a-hash", "topsecret"))
}

func TestTokenRoundTrip(t *testing.T) {
	manager := NewTokenManager("secret", time.Hour)

	token, err := manager.Generate("irvined")
	require.NoError(t, err)

	username, err := manager.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "irvined", username)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret", time.Hour).Generate("irvined")
	require.NoError(t, err)

	_, err = NewTokenManager("other", time.Hour).Validate(token)
	assert.Error(t, err)
}

func TestTokenRejectsExpired(t *testing.T) {
	token, err := NewTokenManager("secret", -time.Minute).Generate("irvined")
	require.NoError(t, err)

	_, err = NewTokenManager("secret", time.Hour).Validate(token)
	assert.Error(t, err)
}

func TestTokenRejectsGarbage(t *testing.T) {
	_, err := NewTokenManager("secret", time.Hour).Validate("not.a.token")
	assert.Error(t, err)
}

func TestStateIsUnique(t *testing.T) {
	a, err := State()
	require.NoError(t, err)
	b, err := State()
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}
