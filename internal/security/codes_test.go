package security

import (
	"encoding/base64"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tok, err := NewToken()
		require.NoError(t, err)

		raw, err := base64.RawURLEncoding.DecodeString(tok)
		require.NoError(t, err)
		assert.Len(t, raw, tokenBytes)
		assert.NotContains(t, tok, "=")
		assert.False(t, seen[tok], "token repeated")
		seen[tok] = true
	}
}

func TestNewVerificationCode(t *testing.T) {
	for i := 0; i < 500; i++ {
		code, err := NewVerificationCode()
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestTokenManager(t *testing.T) {
	tm := NewTokenManager("0123456789abcdef0123456789abcdef", time.Minute)

	t.Run("RoundTrip", func(t *testing.T) {
		tok, err := tm.GenerateAccessToken("member-1", "bob@x.com", []string{"admin"})
		require.NoError(t, err)

		claims, err := tm.ValidateToken(tok)
		require.NoError(t, err)
		assert.Equal(t, "member-1", claims.MemberID)
		assert.Equal(t, "bob@x.com", claims.Email)
		assert.Equal(t, []string{"admin"}, claims.Roles)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other := NewTokenManager("fedcba9876543210fedcba9876543210", time.Minute)
		tok, err := other.GenerateAccessToken("member-1", "", nil)
		require.NoError(t, err)

		_, err = tm.ValidateToken(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := tm.ValidateToken("not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
