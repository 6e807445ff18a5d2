package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token purposes. The purpose claim discriminates the two payload
// variants: access tokens additionally carry the user id.
const (
	PurposeAccess  = "at"
	PurposeRefresh = "rt"
)

// SessionClaims is the signed payload of both token kinds. Subject holds
// the session id; User is set on access tokens only.
type SessionClaims struct {
	Purpose string `json:"purpose"`
	User    string `json:"user,omitempty"`
	jwt.RegisteredClaims
}

// VerifyResult is the soft-fail outcome of token verification. Decoded is
// nil for every failure; Expired is true only when the failure reason was
// expiry, so callers can decide to attempt the refresh flow.
type VerifyResult struct {
	Decoded *SessionClaims
	Expired bool
}

// TokenCodec signs and verifies the compact HS256 session tokens. The
// secret is process-wide, validated at startup by config, and never
// rotated at runtime.
type TokenCodec struct {
	secret []byte
}

// NewTokenCodec creates a codec around the shared signing secret.
func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{secret: []byte(secret)}
}

// Sign issues a token for the given purpose and session. userID is only
// embedded for access tokens. A non-positive ttl produces a token that is
// already expired, which verification then rejects as expired; callers
// carrying over a nearly-elapsed expiry rely on that.
func (c *TokenCodec) Sign(purpose, sessionID, userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if purpose == PurposeAccess {
		claims.User = userID
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("token signing failed: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token. It never returns an error: bad
// signature, malformed payload and expiry all surface through the
// VerifyResult so the middleware chain is not interrupted.
func (c *TokenCodec) Verify(token string) VerifyResult {
	if token == "" {
		return VerifyResult{}
	}

	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return VerifyResult{Expired: errors.Is(err, jwt.ErrTokenExpired)}
	}
	if !parsed.Valid {
		return VerifyResult{}
	}
	return VerifyResult{Decoded: claims}
}
