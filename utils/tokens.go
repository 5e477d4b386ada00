package utils

import (
	"time"

	"github.com/golang-jwt/jwt"
)

// TokenExpiry reads the exp claim of an access token without verifying it.
// The platform signs and verifies its own tokens; this layer only uses the
// expiry to size the session TTL so a session never outlives its token.
// Opaque (non-JWT) tokens or tokens without exp return false.
func TokenExpiry(accessToken string) (time.Time, bool) {
	parser := jwt.Parser{SkipClaimsValidation: true}
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return time.Time{}, false
	}
	exp, ok := claims["exp"].(float64)
	if !ok || exp <= 0 {
		return time.Time{}, false
	}
	return time.Unix(int64(exp), 0), true
}

// SessionTTL picks the session lifetime: the token's remaining validity when
// it is shorter than the configured default, the default otherwise.
func SessionTTL(accessToken string, fallback time.Duration) time.Duration {
	expires, ok := TokenExpiry(accessToken)
	if !ok {
		return fallback
	}
	remaining := time.Until(expires)
	if remaining <= 0 || remaining > fallback {
		return fallback
	}
	return remaining
}
