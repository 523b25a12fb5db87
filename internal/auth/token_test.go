package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func TestTokenManager_IssueAndParse(t *testing.T) {
	m := NewTokenManager(testSecret, "quill-api", "quill-clients", time.Hour)

	signed, issued, err := m.Issue(42, "alice")
	require.NoError(t, err)
	assert.NotEmpty(t, issued.ID)

	claims, err := m.Parse(signed)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, issued.ID, claims.ID)
}

func TestTokenManager_Rejects(t *testing.T) {
	m := NewTokenManager(testSecret, "quill-api", "quill-clients", time.Hour)
	other := NewTokenManager(testSecret, "someone-else", "quill-clients", time.Hour)
	wrongAud := NewTokenManager(testSecret, "quill-api", "other-clients", time.Hour)
	wrongKey := NewTokenManager("another-secret-another-secret-123", "quill-api", "quill-clients", time.Hour)
	expired := NewTokenManager(testSecret, "quill-api", "quill-clients", -time.Minute)

	mint := func(tm *TokenManager) string {
		s, _, err := tm.Issue(7, "bob")
		require.NoError(t, err)
		return s
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "7"})
	noneSigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"issuer":    mint(other),
		"audience":  mint(wrongAud),
		"signature": mint(wrongKey),
		"expired":   mint(expired),
		"alg none":  noneSigned,
		"garbage":   "not.a.token",
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := m.Parse(tok)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokenManager_EmptySecret(t *testing.T) {
	_, _, err := NewTokenManager("", "i", "a", time.Hour).Issue(1, "x")
	assert.Error(t, err)
}

func TestRedisRevocationStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisRevocationStore(rdb)
	ctx := context.Background()

	revoked, err := store.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "abc", time.Now().Add(time.Hour)))
	revoked, err = store.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.True(t, mr.TTL("blacklist:abc") > 0)

	mr.FastForward(2 * time.Hour)
	revoked, err = store.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, revoked)

	// already expired tokens are not stored
	require.NoError(t, store.Revoke(ctx, "old", time.Now().Add(-time.Minute)))
	assert.False(t, mr.Exists("blacklist:old"))
}

func TestRedisRevocationStore_NilClient(t *testing.T) {
	store := NewRedisRevocationStore(nil)
	assert.NoError(t, store.Revoke(context.Background(), "x", time.Now().Add(time.Hour)))
	revoked, err := store.IsRevoked(context.Background(), "x")
	assert.NoError(t, err)
	assert.False(t, revoked)
}
