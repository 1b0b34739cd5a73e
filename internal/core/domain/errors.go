package domain

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailInUse          = errors.New("email already in use")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrMissingRefreshToken = errors.New("refresh token missing")
	ErrInvalidRefreshToken = errors.New("refresh token invalid or revoked")
	ErrForbidden           = errors.New("access forbidden")
	ErrInvalidInput        = errors.New("invalid input")

	ErrProductNotFound = errors.New("product not found")
	ErrVariantNotFound = errors.New("variant not found for product")
	ErrCODUnavailable  = errors.New("COD is not available for product")
	ErrEmptyOrder      = errors.New("order must contain at least one item")

	ErrOrderNotFound       = errors.New("order not found")
	ErrInvalidStatus       = errors.New("invalid order status")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrPaymentVerification = errors.New("payment verification failed")
	ErrPaymentProcessed    = errors.New("payment already processed")
	ErrPaymentGateway      = errors.New("payment gateway error")

	ErrArtworkNotFound    = errors.New("artwork not found")
	ErrSubscriberExists   = errors.New("email already subscribed")
	ErrSubscriberNotFound = errors.New("subscriber not found")

	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrMediaTooLarge    = errors.New("media file too large")
	ErrMediaStorage     = errors.New("media storage error")
	ErrMediaDetached    = errors.New("media no longer referenced by its owner")
)
