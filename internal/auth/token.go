package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry returns the expiry recorded in the bearer token's claims. The
// token is parsed without signature verification: the client has no signing
// key, and the result is used only to tell the user when a fresh login will
// be needed — every authorization decision stays server-side.
func TokenExpiry(token string) (time.Time, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, fmt.Errorf("auth: parse token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, errors.New("auth: token carries no expiry claim")
	}
	return claims.ExpiresAt.Time, nil
}

// TokenExpired reports whether the token's expiry claim has passed. A token
// that cannot be parsed counts as expired.
func TokenExpired(token string, now time.Time) bool {
	exp, err := TokenExpiry(token)
	if err != nil {
		return true
	}
	return now.After(exp)
}
