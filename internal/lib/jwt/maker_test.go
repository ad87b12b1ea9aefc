package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaker_GenerateAndParse(t *testing.T) {
	maker := NewJWTMaker("test_secret", time.Hour)

	token, err := maker.GenerateToken("admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := maker.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestMaker_ParseExpiredToken(t *testing.T) {
	maker := NewJWTMaker("test_secret", -time.Minute)

	token, err := maker.GenerateToken("admin")
	require.NoError(t, err)

	_, err = maker.ParseToken(token)
	assert.Error(t, err)
}

func TestMaker_ParseWrongSecret(t *testing.T) {
	maker := NewJWTMaker("test_secret", time.Hour)
	other := NewJWTMaker("other_secret", time.Hour)

	token, err := maker.GenerateToken("admin")
	require.NoError(t, err)

	_, err = other.ParseToken(token)
	assert.Error(t, err)
}
