package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func TestIssueAndParseToken(t *testing.T) {
	token, err := IssueToken(testSecret, 123, "alice", time.Now())
	require.NoError(t, err)

	claims, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.NotEmpty(t, claims.ID)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(123), id)
}

func TestParseToken_Rejects(t *testing.T) {
	expired, err := IssueToken(testSecret, 1, "a", time.Now().Add(-TokenTTL-time.Hour))
	require.NoError(t, err)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"iss": "someone-else",
		"aud": tokenAudience,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	foreignToken, err := foreign.SignedString([]byte(testSecret))
	require.NoError(t, err)

	good, err := IssueToken(testSecret, 1, "a", time.Now())
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		key   string
	}{
		{"Expired", expired, testSecret},
		{"Wrong Issuer", foreignToken, testSecret},
		{"Wrong Secret", good, "another-secret"},
		{"Malformed", "malformed.token.here", testSecret},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseToken(tt.key, tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestIssueToken_RequiresSecret(t *testing.T) {
	_, err := IssueToken("", 1, "a", time.Now())
	assert.Error(t, err)
}

func TestRevokeToken(t *testing.T) {
	mr, rdb := newTestRedis(t)
	ctx := context.Background()
	now := time.Now()

	token, err := IssueToken(testSecret, 5, "bob", now)
	require.NoError(t, err)

	claims, userID, err := Authenticate(ctx, rdb, testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, uint(5), userID)

	require.NoError(t, RevokeToken(ctx, rdb, claims, now))
	assert.True(t, mr.Exists("blacklist:"+claims.ID))
	assert.True(t, mr.TTL("blacklist:"+claims.ID) > 0)

	_, _, err = Authenticate(ctx, rdb, testSecret, token)
	assert.ErrorIs(t, err, ErrRevokedToken)
}

func TestAuthenticate_MissingToken(t *testing.T) {
	_, _, err := Authenticate(context.Background(), nil, testSecret, "")
	assert.ErrorIs(t, err, ErrMissingToken)
}
