package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/printcraft/storefront/internal/core/domain"
)

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps domain errors
// to HTTP status codes. When verbose is set, 500 responses carry the
// underlying error text in detail.
func NewHTTPErrorHandler(log zerolog.Logger, verbose bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, msg := resolveError(err)
		resp := errorResponse{Error: msg}
		if status >= http.StatusInternalServerError {
			log.Error().
				Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Msg("unhandled error")
			if verbose && status == http.StatusInternalServerError {
				resp.Detail = err.Error()
			}
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, resp)
	}
}

// resolveError maps err to an HTTP status code and a client-facing message.
// Wrapped domain errors keep their context in the message.
func resolveError(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if msg, ok := he.Message.(string); ok {
			return he.Code, msg
		}
		return he.Code, http.StatusText(he.Code)
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrEmptyOrder),
		errors.Is(err, domain.ErrPaymentVerification),
		errors.Is(err, domain.ErrCODUnavailable),
		errors.Is(err, domain.ErrVariantNotFound),
		errors.Is(err, domain.ErrUnsupportedMedia),
		errors.Is(err, domain.ErrMediaTooLarge):
		return http.StatusBadRequest, err.Error()

	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrMissingRefreshToken):
		return http.StatusUnauthorized, err.Error()

	case errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrInvalidRefreshToken):
		return http.StatusForbidden, err.Error()

	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrArtworkNotFound),
		errors.Is(err, domain.ErrSubscriberNotFound):
		return http.StatusNotFound, err.Error()

	case errors.Is(err, domain.ErrEmailInUse),
		errors.Is(err, domain.ErrSubscriberExists),
		errors.Is(err, domain.ErrPaymentProcessed):
		return http.StatusConflict, err.Error()

	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusUnprocessableEntity, err.Error()

	case errors.Is(err, domain.ErrPaymentGateway):
		return http.StatusBadGateway, domain.ErrPaymentGateway.Error()

	case errors.Is(err, domain.ErrMediaStorage):
		return http.StatusInternalServerError, domain.ErrMediaStorage.Error()
	}

	return http.StatusInternalServerError, "internal server error"
}
