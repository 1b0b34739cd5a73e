package ports

import (
	"context"

	"github.com/printcraft/storefront/internal/core/domain"
)

// ListOrdersFilter carries the admin order listing query.
type ListOrdersFilter struct {
	UserID string // optional
	Status string // optional
	Page   int    // 1-based
	Limit  int
}

// OrderRepository defines persistence operations for orders.
type OrderRepository interface {
	// Create inserts the order. Returns domain.ErrPaymentProcessed when the
	// gateway payment id has already been recorded.
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Order, error)
	List(ctx context.Context, filter ListOrdersFilter) ([]*domain.Order, int64, error)
	// UpdateStatus sets status (and updatedAt only) when the order is still in
	// the expected status.
	UpdateStatus(ctx context.Context, id string, expected, next domain.OrderStatus) (*domain.Order, error)
}
