package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/printcraft/storefront/internal/api/handler"
	"github.com/printcraft/storefront/internal/core/domain"
	"github.com/printcraft/storefront/internal/core/ports"
	"github.com/printcraft/storefront/internal/core/service"
)

type routerUsers struct {
	ports.UserRepository
	users map[string]*domain.User
}

func (r *routerUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

type routerAnalytics struct{}

func (routerAnalytics) Dashboard(context.Context) (*domain.Analytics, error) {
	return &domain.Analytics{TotalOrders: 3}, nil
}

type routerFixture struct {
	handler  http.Handler
	customer string
	admin    string
}

func newRouterFixture(t *testing.T) routerFixture {
	t.Helper()
	tokens := service.NewTokenIssuer("router-test-secret", time.Minute, time.Hour)
	customer := &domain.User{ID: "c1", Role: domain.RoleCustomer}
	admin := &domain.User{ID: "a1", Role: domain.RoleAdmin}

	reg := prometheus.NewRegistry()
	e := NewRouter(Dependencies{
		Logger:    zerolog.Nop(),
		ClientURL: "http://localhost:5173",
		UploadDir: t.TempDir(),
		Tokens:    tokens,
		Users:     &routerUsers{users: map[string]*domain.User{customer.ID: customer, admin.ID: admin}},
		Analytics: routerAnalytics{},
		HealthChecks: map[string]handler.DependencyCheck{
			"mongodb": func(context.Context) error { return nil },
		},
		Registerer: reg,
		Gatherer:   reg,
		AuthBurst:  2,
	})

	customerToken, err := tokens.IssueAccess(customer)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	adminToken, err := tokens.IssueAccess(admin)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return routerFixture{handler: e, customer: customerToken, admin: adminToken}
}

func (f routerFixture) do(method, target, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestRouter_ServiceRoutes(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(http.MethodGet, "/", "", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "Storefront API is running" {
		t.Fatalf("unexpected root response %d %q", rec.Code, rec.Body.String())
	}
	if rec := f.do(http.MethodGet, "/health", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /health, got %d", rec.Code)
	}
	if rec := f.do(http.MethodGet, "/health/ready", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /health/ready, got %d", rec.Code)
	}
	rec = f.do(http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "storefront_requests_total") {
		t.Fatalf("expected request metrics, got %d", rec.Code)
	}
}

func TestRouter_AccessControl(t *testing.T) {
	f := newRouterFixture(t)

	cases := []struct {
		name  string
		token string
		want  int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"customer", f.customer, http.StatusForbidden},
		{"admin", f.admin, http.StatusOK},
	}
	for _, tc := range cases {
		rec := f.do(http.MethodGet, "/api/v1/analytics", tc.token, "")
		if rec.Code != tc.want {
			t.Fatalf("%s: expected %d, got %d (%s)", tc.name, tc.want, rec.Code, rec.Body.String())
		}
	}

	rec := f.do(http.MethodGet, "/api/v1/analytics", f.customer, "")
	if got := strings.TrimSpace(rec.Body.String()); got != `{"error":"access forbidden"}` {
		t.Fatalf("unexpected forbidden body %q", got)
	}
}

func TestRouter_UnknownRouteUsesEnvelope(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(http.MethodGet, "/api/v1/nope", "", "")
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), `"error"`) {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_RateLimitsLogin(t *testing.T) {
	f := newRouterFixture(t)

	var last int
	for i := 0; i < 5; i++ {
		// Malformed bodies are rejected before the auth service is reached.
		last = f.do(http.MethodPost, "/api/v1/auth/login", "", "{").Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after the burst, got %d", last)
	}
}

func TestRouter_CORSAllowsClientWithCredentials(t *testing.T) {
	f := newRouterFixture(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/products", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if rec.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Fatalf("unexpected allow origin %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}
	if rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatalf("credentials must be allowed for the refresh cookie")
	}
}
