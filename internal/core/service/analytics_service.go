package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/printcraft/storefront/internal/core/domain"
	"github.com/printcraft/storefront/internal/core/ports"
)

const (
	topProductsLimit = 5
	revenueMonths    = 12
)

// AnalyticsService assembles the admin dashboard summary.
type AnalyticsService struct {
	analytics   ports.AnalyticsRepository
	products    ports.ProductRepository
	users       ports.UserRepository
	subscribers ports.SubscriberRepository
	now         func() time.Time
}

func NewAnalyticsService(
	analytics ports.AnalyticsRepository,
	products ports.ProductRepository,
	users ports.UserRepository,
	subscribers ports.SubscriberRepository,
) *AnalyticsService {
	return &AnalyticsService{
		analytics:   analytics,
		products:    products,
		users:       users,
		subscribers: subscribers,
		now:         time.Now,
	}
}

// Dashboard runs the independent aggregations concurrently.
func (s *AnalyticsService) Dashboard(ctx context.Context) (*domain.Analytics, error) {
	out := &domain.Analytics{}
	since := monthStart(s.now().UTC()).AddDate(0, -(revenueMonths - 1), 0)

	var summary ports.OrderSummary
	var monthly []domain.MonthlyRevenue

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		summary, err = s.analytics.OrderSummary(ctx)
		return err
	})
	g.Go(func() (err error) {
		out.OrdersByStatus, err = s.analytics.OrdersByStatus(ctx)
		return err
	})
	g.Go(func() (err error) {
		out.TopProducts, err = s.analytics.TopProducts(ctx, topProductsLimit)
		return err
	})
	g.Go(func() (err error) {
		monthly, err = s.analytics.MonthlyRevenue(ctx, since)
		return err
	})
	g.Go(func() (err error) {
		out.TotalProducts, err = s.products.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		out.TotalUsers, err = s.users.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		out.TotalSubscribers, err = s.subscribers.Count(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.TotalOrders = summary.TotalOrders
	out.TotalRevenue = summary.TotalRevenue
	out.PaidRevenue = summary.PaidRevenue
	out.MonthlyRevenue = fillMonths(since, monthly)

	// Every status is reported, including those without orders.
	if out.OrdersByStatus == nil {
		out.OrdersByStatus = map[string]int64{}
	}
	for _, st := range []domain.OrderStatus{domain.StatusPending, domain.StatusAccepted, domain.StatusInProduction, domain.StatusSupplied, domain.StatusCompleted} {
		if _, ok := out.OrdersByStatus[string(st)]; !ok {
			out.OrdersByStatus[string(st)] = 0
		}
	}
	if out.TopProducts == nil {
		out.TopProducts = []domain.TopProduct{}
	}
	return out, nil
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// fillMonths returns one entry per month from since, zero-filling gaps.
func fillMonths(since time.Time, rows []domain.MonthlyRevenue) []domain.MonthlyRevenue {
	byMonth := make(map[string]domain.MonthlyRevenue, len(rows))
	for _, r := range rows {
		byMonth[r.Month] = r
	}
	out := make([]domain.MonthlyRevenue, 0, revenueMonths)
	for i := 0; i < revenueMonths; i++ {
		key := since.AddDate(0, i, 0).Format("2006-01")
		row, ok := byMonth[key]
		if !ok {
			row = domain.MonthlyRevenue{Month: key}
		}
		out = append(out, row)
	}
	return out
}
