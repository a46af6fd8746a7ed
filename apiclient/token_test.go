package apiclient

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestToken_Expired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		skew      time.Duration
		want      bool
	}{
		{"no expiry never expires", time.Time{}, 30 * time.Second, false},
		{"far future", time.Now().Add(time.Hour), 30 * time.Second, false},
		{"already past", time.Now().Add(-time.Minute), 30 * time.Second, true},
		{"inside skew window", time.Now().Add(10 * time.Second), 30 * time.Second, true},
		{"outside skew window", time.Now().Add(10 * time.Second), time.Second, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := &Token{AccessToken: "a", ExpiresAt: tt.expiresAt}
			if got := tok.Expired(tt.skew); got != tt.want {
				t.Errorf("Expired(%v) = %v, want %v", tt.skew, got, tt.want)
			}
		})
	}
}

func TestTokenFromExpiresIn(t *testing.T) {
	before := time.Now()
	tok := TokenFromExpiresIn("access", time.Hour, "refresh")

	if tok.AccessToken != "access" || tok.RefreshToken != "refresh" {
		t.Errorf("token = %+v", tok)
	}
	if tok.TokenType != "Bearer" {
		t.Errorf("token type = %q", tok.TokenType)
	}
	if tok.ExpiresAt.Before(before.Add(time.Hour)) || tok.ExpiresAt.After(time.Now().Add(time.Hour)) {
		t.Errorf("expiry %v not ~1h from now", tok.ExpiresAt)
	}

	if tok := TokenFromExpiresIn("access", 0, ""); !tok.ExpiresAt.IsZero() {
		t.Errorf("zero lifetime should leave no expiry, got %v", tok.ExpiresAt)
	}
}

func TestTokenFromAccessToken_JWTExpiry(t *testing.T) {
	exp := time.Now().Add(45 * time.Minute).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "svc-caller",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	tok := TokenFromAccessToken(signed, "")
	if !tok.ExpiresAt.Equal(exp) {
		t.Errorf("expiry = %v, want %v from exp claim", tok.ExpiresAt, exp)
	}
}

func TestTokenFromAccessToken_OpaqueToken(t *testing.T) {
	tok := TokenFromAccessToken("not-a-jwt", "refresh")
	if !tok.ExpiresAt.IsZero() {
		t.Errorf("opaque token should have no expiry, got %v", tok.ExpiresAt)
	}
	if tok.RefreshToken != "refresh" {
		t.Errorf("refresh token = %q", tok.RefreshToken)
	}
}

func TestTokenFromAccessToken_JWTWithoutExp(t *testing.T) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "svc-caller",
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if tok := TokenFromAccessToken(signed, ""); !tok.ExpiresAt.IsZero() {
		t.Errorf("missing exp claim should mean no expiry, got %v", tok.ExpiresAt)
	}
}
