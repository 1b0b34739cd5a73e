package client

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"golang.org/x/sync/singleflight"
)

// refreshTransport attaches the bearer token to every request. When a request
// fails with 401 it refreshes the session once, shared by every request that
// failed with the same token, and replays the request with the new token.
type refreshTransport struct {
	base    http.RoundTripper
	session *Session
	refresh func(ctx context.Context) (string, error)
	group   singleflight.Group
}

// Calls that must never trigger a refresh.
var noRefreshPaths = []string{"/auth/login", "/auth/register", "/auth/refresh"}

func (t *refreshTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token := t.session.Token()
	resp, err := t.base.RoundTrip(withToken(req, token))
	if err != nil || resp.StatusCode != http.StatusUnauthorized || !refreshable(req) {
		return resp, err
	}

	// Keep the 401 so it can be returned if the refresh fails.
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))

	fresh, err := t.refreshFrom(req.Context(), token)
	if err != nil || fresh == "" {
		return resp, nil
	}

	replay := withToken(req, fresh)
	if req.Body != nil {
		if req.GetBody == nil {
			return resp, nil
		}
		if replay.Body, err = req.GetBody(); err != nil {
			return nil, err
		}
	}
	return t.base.RoundTrip(replay)
}

// refreshFrom returns a token newer than stale, refreshing at most once per
// stale token.
func (t *refreshTransport) refreshFrom(ctx context.Context, stale string) (string, error) {
	v, err, _ := t.group.Do("refresh:"+stale, func() (any, error) {
		if current := t.session.Token(); current != "" && current != stale {
			return current, nil
		}
		return t.refresh(context.WithoutCancel(ctx))
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func refreshable(req *http.Request) bool {
	for _, p := range noRefreshPaths {
		if strings.HasSuffix(req.URL.Path, p) {
			return false
		}
	}
	return true
}

func withToken(req *http.Request, token string) *http.Request {
	r := req.Clone(req.Context())
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	} else {
		r.Header.Del("Authorization")
	}
	return r
}
