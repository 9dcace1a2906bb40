package token

import (
	"testing"
	"time"

	"github.com/RoyceAzure/lab/barcheckout/internal/constants"
	"github.com/stretchr/testify/require"
)

const testKey = "01234567890123456789012345678901"

func TestJWTMaker(t *testing.T) {
	maker, err := NewJWTMaker(testKey)
	require.NoError(t, err)

	tokenStr, payload, err := maker.CreateToken(7, constants.RoleAdmin, time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, tokenStr)

	got, err := maker.VerifyToken(tokenStr)
	require.NoError(t, err)
	require.Equal(t, int64(7), got.UserID)
	require.True(t, got.IsAdmin())
	require.WithinDuration(t, payload.ExpiresAt.Time, got.ExpiresAt.Time, time.Second)
}

func TestJWTMakerExpired(t *testing.T) {
	maker, err := NewJWTMaker(testKey)
	require.NoError(t, err)

	tokenStr, _, err := maker.CreateToken(1, constants.RoleUser, -time.Minute)
	require.NoError(t, err)

	_, err = maker.VerifyToken(tokenStr)
	require.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTMakerWrongKey(t *testing.T) {
	maker, err := NewJWTMaker(testKey)
	require.NoError(t, err)
	other, err := NewJWTMaker("abcdefghijabcdefghijabcdefghijab")
	require.NoError(t, err)

	tokenStr, _, err := other.CreateToken(1, constants.RoleUser, time.Minute)
	require.NoError(t, err)

	_, err = maker.VerifyToken(tokenStr)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewJWTMakerShortKey(t *testing.T) {
	_, err := NewJWTMaker("short")
	require.Error(t, err)
}
