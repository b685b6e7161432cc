package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry extracts the exp claim from a JWT without verifying its
// signature. Verification belongs to the API gateway; locally the expiry
// is only advisory, used to decide whether a login prompt is needed.
func TokenExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("failed to parse token: %w", err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, fmt.Errorf("token has no expiration claim")
	}

	return exp.Time, nil
}

// TokenValid reports whether the token parses and its expiry is after now.
// Malformed tokens are treated as expired.
func TokenValid(token string, now time.Time) bool {
	exp, err := TokenExpiry(token)
	if err != nil {
		return false
	}
	return exp.After(now)
}
