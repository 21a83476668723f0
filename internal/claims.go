package internal

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenHint carries claims decoded from the bearer token WITHOUT signature
// verification. It exists only to pick which view to show; the server must
// independently authorize every request, so nothing here may be used for
// access control.
type TokenHint struct {
	Username  string
	Role      string
	ExpiresAt time.Time
}

// Expired reports whether the token's exp claim, when present, has passed.
func (h TokenHint) Expired() bool {
	return !h.ExpiresAt.IsZero() && time.Now().After(h.ExpiresAt)
}

// DecodeTokenHint reads the sub/role/exp claims from a token payload without
// verifying its signature.
func DecodeTokenHint(token string) (TokenHint, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenHint{}, fmt.Errorf("failed to decode token: %w", err)
	}

	hint := TokenHint{}
	if sub, ok := claims["sub"].(string); ok {
		hint.Username = sub
	}
	if role, ok := claims["role"].(string); ok {
		hint.Role = role
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		hint.ExpiresAt = exp.Time
	}
	return hint, nil
}
