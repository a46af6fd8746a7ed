package apiclient

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultExpirySkew is subtracted from a token's remaining lifetime
// when deciding whether it is expired, so refresh happens slightly
// before true expiry.
const DefaultExpirySkew = 30 * time.Second

// Token is an OAuth2 credential bundle.
type Token struct {
	AccessToken string `json:"access_token"`
	// TokenType is the Authorization scheme, normally "Bearer".
	TokenType string `json:"token_type"`
	// ExpiresAt is the absolute expiry instant. Zero means the token
	// never expires.
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	// RefreshToken is present when the provider issues one.
	RefreshToken string `json:"refresh_token,omitempty"`
}

// TokenFromExpiresIn builds a Token from a relative lifetime, as
// returned by most token endpoints ("expires_in" seconds).
func TokenFromExpiresIn(accessToken string, expiresIn time.Duration, refreshToken string) *Token {
	t := &Token{
		AccessToken:  accessToken,
		TokenType:    "Bearer",
		RefreshToken: refreshToken,
	}
	if expiresIn > 0 {
		t.ExpiresAt = time.Now().Add(expiresIn)
	}
	return t
}

// TokenFromAccessToken builds a Token when the provider reports no
// explicit lifetime. If the access token is a JWT, its exp claim is
// read (without signature verification) to recover the expiry.
func TokenFromAccessToken(accessToken, refreshToken string) *Token {
	return &Token{
		AccessToken:  accessToken,
		TokenType:    "Bearer",
		ExpiresAt:    jwtExpiry(accessToken),
		RefreshToken: refreshToken,
	}
}

// Expired reports whether the token should be considered expired,
// evaluated against the current time plus skew.
func (t *Token) Expired(skew time.Duration) bool {
	if t.ExpiresAt.IsZero() {
		return false
	}
	return !time.Now().Add(skew).Before(t.ExpiresAt)
}

// jwtExpiry extracts the exp claim from a JWT access token. Returns
// the zero time when the token is not a JWT or carries no expiry.
// The signature is deliberately not verified; the client is the
// token's audience, not its validator.
func jwtExpiry(accessToken string) time.Time {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
