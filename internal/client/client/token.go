package client

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/clubattach/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// RefreshFunc obtains a new access token.
type RefreshFunc func(ctx context.Context) (string, error)

// bearerTransport adds the access token to every request. Expired JWTs are
// refreshed before sending when a refresher is set; a 401 triggers one
// refresh and one retry for requests whose body can be replayed.
type bearerTransport struct {
	base    http.RoundTripper
	refresh RefreshFunc
	now     func() time.Time

	mu    sync.Mutex
	token string
}

func newBearerTransport(base http.RoundTripper, token string, refresh RefreshFunc) *bearerTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &bearerTransport{base: base, token: token, refresh: refresh, now: time.Now}
}

func (t *bearerTransport) current() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.token
}

func (t *bearerTransport) SetToken(token string) {
	t.mu.Lock()
	t.token = token
	t.mu.Unlock()
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	token := t.current()
	if tokenExpired(token, t.now()) {
		if t.refresh == nil {
			return nil, fmt.Errorf("%w: %w", ErrUnauthorized, common.ErrTokenExpired)
		}
		var err error
		if token, err = t.doRefresh(ctx); err != nil {
			return nil, err
		}
	}

	resp, err := t.base.RoundTrip(withBearer(req, token))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized || t.refresh == nil {
		return resp, nil
	}
	if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
		return resp, nil
	}

	token, err = t.doRefresh(ctx)
	if err != nil {
		return resp, nil
	}
	_ = resp.Body.Close()

	retry := req.Clone(ctx)
	if req.GetBody != nil {
		if retry.Body, err = req.GetBody(); err != nil {
			return nil, err
		}
	}
	return t.base.RoundTrip(withBearer(retry, token))
}

func (t *bearerTransport) doRefresh(ctx context.Context) (string, error) {
	token, err := t.refresh(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: refresh token: %w", ErrUnauthorized, err)
	}
	t.SetToken(token)
	return token, nil
}

func withBearer(req *http.Request, token string) *http.Request {
	r := req.Clone(req.Context())
	if token != "" {
		r.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
	}
	return r
}

// tokenExpired reports whether token is a JWT whose exp claim is in the
// past. Opaque tokens and JWTs without exp never expire here; the server
// stays the authority.
func tokenExpired(token string, now time.Time) bool {
	if token == "" {
		return false
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !now.Before(claims.ExpiresAt.Time)
}
