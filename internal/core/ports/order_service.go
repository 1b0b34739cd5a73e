package ports

import (
	"context"

	"github.com/printcraft/storefront/internal/core/domain"
)

// CheckoutLine is a single cart line submitted at checkout.
type CheckoutLine struct {
	ProductID string
	VariantID string
	Quantity  int
}

// PaymentConfirmation carries the values returned by the hosted checkout.
type PaymentConfirmation struct {
	OrderID   string
	PaymentID string
	Signature string
}

// CheckoutInput carries everything needed to persist a paid order.
type CheckoutInput struct {
	UserID          string
	Lines           []CheckoutLine
	ShippingAddress domain.Address
	Currency        string
	Payment         PaymentConfirmation
}

// Viewer identifies the caller for ownership checks.
type Viewer struct {
	UserID string
	Role   string
}

func (v Viewer) IsAdmin() bool {
	return v.Role == domain.RoleAdmin
}

// OrderPage is a page of orders.
type OrderPage struct {
	Items      []*domain.Order `json:"items"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"totalPages"`
}

type OrderService interface {
	CreatePaymentOrder(ctx context.Context, amount float64, currency string) (*domain.GatewayOrder, error)
	Checkout(ctx context.Context, input CheckoutInput) (*domain.Order, error)
	CheckoutCOD(ctx context.Context, input CheckoutInput) (*domain.Order, error)
	ListMine(ctx context.Context, userID string) ([]*domain.Order, error)
	ListAll(ctx context.Context, filter ListOrdersFilter) (*OrderPage, error)
	Get(ctx context.Context, id string, viewer Viewer) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
	Receipt(ctx context.Context, id string, viewer Viewer) ([]byte, error)
}
