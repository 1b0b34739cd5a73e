package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/printcraft/storefront/internal/core/domain"
)

func TestResolveError(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: title is required", domain.ErrInvalidInput), http.StatusBadRequest},
		{domain.ErrPaymentVerification, http.StatusBadRequest},
		{fmt.Errorf("%w: Photo Mug", domain.ErrCODUnavailable), http.StatusBadRequest},
		{domain.ErrMediaTooLarge, http.StatusBadRequest},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrMissingRefreshToken, http.StatusUnauthorized},
		{domain.ErrInvalidRefreshToken, http.StatusForbidden},
		{domain.ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("%w: 42", domain.ErrProductNotFound), http.StatusNotFound},
		{domain.ErrSubscriberNotFound, http.StatusNotFound},
		{domain.ErrEmailInUse, http.StatusConflict},
		{domain.ErrPaymentProcessed, http.StatusConflict},
		{domain.ErrInvalidTransition, http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: timeout", domain.ErrPaymentGateway), http.StatusBadGateway},
		{echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded"), http.StatusTooManyRequests},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got, _ := resolveError(tc.err); got != tc.want {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.want, got)
		}
	}
}

func TestResolveError_KeepsWrappedContext(t *testing.T) {
	_, msg := resolveError(fmt.Errorf("%w: Photo Mug", domain.ErrCODUnavailable))
	if msg != "COD is not available for product: Photo Mug" {
		t.Fatalf("unexpected message %q", msg)
	}
	_, msg = resolveError(errors.New("mongo: connection reset"))
	if msg != "internal server error" {
		t.Fatalf("internal errors must not leak, got %q", msg)
	}
}

func TestHTTPErrorHandler_DetailOnlyWhenVerbose(t *testing.T) {
	for _, verbose := range []bool{false, true} {
		e := echo.New()
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

		NewHTTPErrorHandler(zerolog.Nop(), verbose)(errors.New("mongo: connection reset"), c)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid json: %v", err)
		}
		if body["error"] != "internal server error" {
			t.Fatalf("unexpected error %q", body["error"])
		}
		if _, ok := body["detail"]; ok != verbose {
			t.Fatalf("verbose=%v: unexpected detail presence in %v", verbose, body)
		}
	}
}

func TestHTTPErrorHandler_DomainError(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop(), true)(domain.ErrEmailInUse, c)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if got := rec.Body.String(); got != "{\"error\":\"email already in use\"}\n" {
		t.Fatalf("unexpected body %q", got)
	}
}
