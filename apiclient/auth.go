package apiclient

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// AuthStrategy supplies authentication headers for outgoing requests.
// Implementations must be safe for concurrent use; the client shares
// one strategy across all calls.
type AuthStrategy interface {
	// Headers returns the headers to attach to a request, obtaining or
	// refreshing the underlying credential if needed.
	Headers(ctx context.Context) (map[string]string, error)
	// Refresh proactively ensures the credential is fresh. Returns
	// true when the credential changed.
	Refresh(ctx context.Context) (bool, error)
	// ForceRefresh unconditionally re-establishes the credential,
	// regardless of apparent freshness. Invoked after a server-side
	// authorization failure. Returns true when the credential changed.
	ForceRefresh(ctx context.Context) (bool, error)
}

// StaticTokenAuth sends a fixed bearer token. Refresh operations are
// no-ops; use it when credentials are supplied out of band and never
// rotate.
type StaticTokenAuth struct {
	token string
}

// NewStaticTokenAuth creates a static bearer token strategy.
func NewStaticTokenAuth(token string) *StaticTokenAuth {
	return &StaticTokenAuth{token: token}
}

// Headers returns the fixed bearer header.
func (a *StaticTokenAuth) Headers(context.Context) (map[string]string, error) {
	return map[string]string{"Authorization": "Bearer " + a.token}, nil
}

// Refresh is a no-op.
func (a *StaticTokenAuth) Refresh(context.Context) (bool, error) { return false, nil }

// ForceRefresh is a no-op.
func (a *StaticTokenAuth) ForceRefresh(context.Context) (bool, error) { return false, nil }

// TokenFunc obtains a brand-new token, e.g. via a login flow.
type TokenFunc func(ctx context.Context) (*Token, error)

// RefreshFunc exchanges a still-valid refresh token for a new token.
type RefreshFunc func(ctx context.Context, refreshToken string) (*Token, error)

// OAuthAuth manages an expiring OAuth2 credential. The token is
// fetched lazily, replaced wholesale on refresh, and guarded by a
// mutex so only one caller performs a token round trip at a time;
// concurrent callers wait for that result instead of issuing
// duplicate fetches. The lock is held only across the token exchange,
// never across the API call that uses the token.
type OAuthAuth struct {
	fetchToken   TokenFunc
	refreshToken RefreshFunc
	skew         time.Duration

	mu    sync.Mutex
	token *Token
}

// OAuthOption configures an OAuthAuth.
type OAuthOption func(*OAuthAuth)

// WithRefreshFunc enables the refresh-token exchange flow. Without it
// an expired credential is replaced by a full fetch.
func WithRefreshFunc(fn RefreshFunc) OAuthOption {
	return func(a *OAuthAuth) { a.refreshToken = fn }
}

// WithExpirySkew overrides the expiry skew (default 30s).
func WithExpirySkew(skew time.Duration) OAuthOption {
	return func(a *OAuthAuth) { a.skew = skew }
}

// NewOAuthAuth creates a refreshing OAuth2 strategy around a token
// fetch capability.
func NewOAuthAuth(fetch TokenFunc, opts ...OAuthOption) *OAuthAuth {
	a := &OAuthAuth{
		fetchToken: fetch,
		skew:       DefaultExpirySkew,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var errNoToken = errors.New("no token available")

// ensureToken makes the cached token usable, fetching or refreshing as
// needed. Callers must hold a.mu.
func (a *OAuthAuth) ensureToken(ctx context.Context) error {
	if a.token == nil {
		t, err := a.fetchToken(ctx)
		if err != nil {
			return fmt.Errorf("fetch token: %w", err)
		}
		a.token = t
		return nil
	}
	if !a.token.Expired(a.skew) {
		return nil
	}
	if a.refreshToken != nil && a.token.RefreshToken != "" {
		t, err := a.refreshToken(ctx, a.token.RefreshToken)
		if err != nil {
			return fmt.Errorf("refresh token: %w", err)
		}
		a.token = t
		return nil
	}
	t, err := a.fetchToken(ctx)
	if err != nil {
		return fmt.Errorf("fetch token: %w", err)
	}
	a.token = t
	return nil
}

// accessToken returns the current access token value. Callers must
// hold a.mu.
func (a *OAuthAuth) accessToken() string {
	if a.token == nil {
		return ""
	}
	return a.token.AccessToken
}

// Headers returns the Authorization header for the current token,
// obtaining one first when none is cached or the cached one expired.
func (a *OAuthAuth) Headers(ctx context.Context) (map[string]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.ensureToken(ctx); err != nil {
		return nil, err
	}
	if a.token == nil || a.token.AccessToken == "" {
		return nil, errNoToken
	}
	scheme := a.token.TokenType
	if scheme == "" {
		scheme = "Bearer"
	}
	return map[string]string{"Authorization": scheme + " " + a.token.AccessToken}, nil
}

// Refresh ensures the token is fresh and reports whether its value
// changed.
func (a *OAuthAuth) Refresh(ctx context.Context) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	before := a.accessToken()
	if err := a.ensureToken(ctx); err != nil {
		return false, err
	}
	return before != a.accessToken(), nil
}

// ForceRefresh re-establishes the credential even when the cached one
// looks unexpired. The refresh-token exchange is preferred when
// available, otherwise a full fetch is performed.
func (a *OAuthAuth) ForceRefresh(ctx context.Context) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	before := a.accessToken()

	var (
		t   *Token
		err error
	)
	if a.token != nil && a.refreshToken != nil && a.token.RefreshToken != "" {
		t, err = a.refreshToken(ctx, a.token.RefreshToken)
		if err != nil {
			err = fmt.Errorf("refresh token: %w", err)
		}
	} else {
		t, err = a.fetchToken(ctx)
		if err != nil {
			err = fmt.Errorf("fetch token: %w", err)
		}
	}
	if err != nil {
		return false, err
	}
	a.token = t
	return before != a.accessToken(), nil
}
