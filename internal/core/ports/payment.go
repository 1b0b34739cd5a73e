package ports

import (
	"context"

	"github.com/printcraft/storefront/internal/core/domain"
)

// PaymentGateway is the hosted checkout provider.
type PaymentGateway interface {
	// CreateOrder registers an order of amount minor units with the gateway.
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*domain.GatewayOrder, error)
	FetchOrder(ctx context.Context, id string) (*domain.GatewayOrder, error)
	VerifySignature(orderID, paymentID, signature string) bool
	KeyID() string
}

// PaymentLock guards against the same gateway payment being recorded twice.
type PaymentLock interface {
	Acquire(ctx context.Context, paymentID string) (bool, error)
	Release(ctx context.Context, paymentID string) error
}
