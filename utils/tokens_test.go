package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signedToken(t, jwt.MapClaims{"sub": "a@b.com", "exp": exp.Unix()})

	got, ok := TokenExpiry(token)
	if !ok {
		t.Fatal("expected exp claim to be readable")
	}
	if !got.Equal(exp) {
		t.Errorf("expiry: got %v, want %v", got, exp)
	}
}

func TestTokenExpiry_NoExpClaim(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"sub": "a@b.com"})
	if _, ok := TokenExpiry(token); ok {
		t.Error("expected no expiry for a token without exp")
	}
}

func TestTokenExpiry_OpaqueToken(t *testing.T) {
	if _, ok := TokenExpiry("not-a-jwt"); ok {
		t.Error("expected no expiry for an opaque token")
	}
}

func TestSessionTTL(t *testing.T) {
	fallback := 24 * time.Hour

	t.Run("token expires before the default", func(t *testing.T) {
		token := signedToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
		ttl := SessionTTL(token, fallback)
		if ttl > time.Hour || ttl < 55*time.Minute {
			t.Errorf("ttl: got %v, want about an hour", ttl)
		}
	})

	t.Run("token outlives the default", func(t *testing.T) {
		token := signedToken(t, jwt.MapClaims{"exp": time.Now().Add(72 * time.Hour).Unix()})
		if ttl := SessionTTL(token, fallback); ttl != fallback {
			t.Errorf("ttl: got %v, want %v", ttl, fallback)
		}
	})

	t.Run("already expired token", func(t *testing.T) {
		token := signedToken(t, jwt.MapClaims{"exp": time.Now().Add(-time.Hour).Unix()})
		if ttl := SessionTTL(token, fallback); ttl != fallback {
			t.Errorf("ttl: got %v, want %v", ttl, fallback)
		}
	})

	t.Run("opaque token", func(t *testing.T) {
		if ttl := SessionTTL("opaque", fallback); ttl != fallback {
			t.Errorf("ttl: got %v, want %v", ttl, fallback)
		}
	})
}
