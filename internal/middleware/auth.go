package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	tokenIssuer   = "fritter-api"
	tokenAudience = "fritter-client"
	// TokenTTL is the lifetime of a session token.
	TokenTTL = 7 * 24 * time.Hour
)

var (
	ErrMissingToken = errors.New("authorization required")
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrRevokedToken = errors.New("token has been revoked")
)

// SessionClaims are the claims carried by a Fritter session token.
type SessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *SessionClaims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return uint(id), nil
}

// IssueToken signs an HS256 session token for the user.
func IssueToken(secret string, userID uint, username string, now time.Time) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}
	claims := SessionClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        fmt.Sprintf("%d-%s", now.Unix(), uuid.New().String()[:8]),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken validates signature, expiry, issuer and audience.
func ParseToken(secret, tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(c *fiber.Ctx) string {
	parts := strings.Fields(c.Get("Authorization"))
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

func revocationKey(jti string) string {
	return "blacklist:" + jti
}

// RevokeToken blacklists the token id until the token would have expired.
func RevokeToken(ctx context.Context, rdb *redis.Client, claims *SessionClaims, now time.Time) error {
	if rdb == nil || claims.ID == "" {
		return nil
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		if remaining := claims.ExpiresAt.Sub(now); remaining > 0 {
			ttl = remaining
		}
	}
	return rdb.Set(ctx, revocationKey(claims.ID), "1", ttl).Err()
}

// IsRevoked reports whether the token id has been blacklisted.
func IsRevoked(ctx context.Context, rdb *redis.Client, jti string) (bool, error) {
	if rdb == nil || jti == "" {
		return false, nil
	}
	n, err := rdb.Exists(ctx, revocationKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Authenticate parses the bearer token and rejects revoked ones. Redis
// errors during the revocation check fail open.
func Authenticate(ctx context.Context, rdb *redis.Client, secret, tokenString string) (*SessionClaims, uint, error) {
	if tokenString == "" {
		return nil, 0, ErrMissingToken
	}
	claims, err := ParseToken(secret, tokenString)
	if err != nil {
		return nil, 0, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, 0, err
	}
	if revoked, err := IsRevoked(ctx, rdb, claims.ID); err == nil && revoked {
		return nil, 0, ErrRevokedToken
	}
	return claims, userID, nil
}
