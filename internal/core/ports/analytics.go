package ports

import (
	"context"
	"time"

	"github.com/printcraft/storefront/internal/core/domain"
)

// OrderSummary aggregates order totals.
type OrderSummary struct {
	TotalOrders  int64
	TotalRevenue float64
	PaidRevenue  float64
}

// AnalyticsRepository runs the dashboard aggregations over orders.
type AnalyticsRepository interface {
	OrderSummary(ctx context.Context) (OrderSummary, error)
	OrdersByStatus(ctx context.Context) (map[string]int64, error)
	TopProducts(ctx context.Context, limit int) ([]domain.TopProduct, error)
	// MonthlyRevenue groups orders created at or after since by YYYY-MM.
	MonthlyRevenue(ctx context.Context, since time.Time) ([]domain.MonthlyRevenue, error)
}

type AnalyticsService interface {
	Dashboard(ctx context.Context) (*domain.Analytics, error)
}
