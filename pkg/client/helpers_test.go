package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, mux *http.ServeMux, opts ...Option) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, opts...)
	require.NoError(t, err)
	return c, srv
}

// seedRefreshCookie stores a refresh cookie the way a prior login would have.
func seedRefreshCookie(t *testing.T, c *Client, srv *httptest.Server, value string) {
	t.Helper()
	u, err := url.Parse(srv.URL + "/api/v1/auth")
	require.NoError(t, err)
	c.http.Jar.SetCookies(u, []*http.Cookie{{Name: "refreshToken", Value: value, Path: "/api/v1/auth"}})
}
