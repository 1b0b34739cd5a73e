package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/printcraft/storefront/internal/core/domain"
	"github.com/printcraft/storefront/internal/core/ports"
)

type stubAnalyticsRepo struct {
	since time.Time
	err   error
}

func (r *stubAnalyticsRepo) OrderSummary(context.Context) (ports.OrderSummary, error) {
	return ports.OrderSummary{TotalOrders: 4, TotalRevenue: 2500, PaidRevenue: 1500}, r.err
}

func (r *stubAnalyticsRepo) OrdersByStatus(context.Context) (map[string]int64, error) {
	return map[string]int64{"pending": 3, "completed": 1}, nil
}

func (r *stubAnalyticsRepo) TopProducts(_ context.Context, limit int) ([]domain.TopProduct, error) {
	return []domain.TopProduct{{ProductID: "mug", Name: "Photo Mug", Quantity: 7, Revenue: 2093}}, nil
}

func (r *stubAnalyticsRepo) MonthlyRevenue(_ context.Context, since time.Time) ([]domain.MonthlyRevenue, error) {
	r.since = since
	return []domain.MonthlyRevenue{{Month: "2026-09", Orders: 4, Revenue: 2500}}, nil
}

func TestAnalyticsService_Dashboard(t *testing.T) {
	repo := &stubAnalyticsRepo{}
	products := newStubProductRepo(&domain.Product{ID: "mug"})
	users := newStubUserRepo()
	_, _ = users.Create(context.Background(), &domain.User{Email: "a@example.com"})
	subs := &stubSubscriberRepo{subs: []*domain.Subscriber{{Email: "x@example.com"}, {Email: "y@example.com"}}}

	svc := NewAnalyticsService(repo, products, users, subs)
	svc.now = func() time.Time { return time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC) }

	got, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Dashboard returned error: %v", err)
	}
	if got.TotalOrders != 4 || got.PaidRevenue != 1500 || got.TotalProducts != 1 || got.TotalUsers != 1 || got.TotalSubscribers != 2 {
		t.Fatalf("unexpected totals: %+v", got)
	}
	if got.OrdersByStatus["in production"] != 0 || got.OrdersByStatus["pending"] != 3 || len(got.OrdersByStatus) != 5 {
		t.Fatalf("unexpected status breakdown: %+v", got.OrdersByStatus)
	}
	if !repo.since.Equal(time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected window start: %v", repo.since)
	}
	if len(got.MonthlyRevenue) != 12 || got.MonthlyRevenue[0].Month != "2025-11" || got.MonthlyRevenue[11].Month != "2026-10" {
		t.Fatalf("unexpected months: %+v", got.MonthlyRevenue)
	}
	if got.MonthlyRevenue[10].Revenue != 2500 {
		t.Fatalf("expected September revenue, got %+v", got.MonthlyRevenue[10])
	}
}

func TestAnalyticsService_Dashboard_PropagatesErrors(t *testing.T) {
	boom := errors.New("aggregate failed")
	svc := NewAnalyticsService(&stubAnalyticsRepo{err: boom}, newStubProductRepo(), newStubUserRepo(), &stubSubscriberRepo{})

	if _, err := svc.Dashboard(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected aggregate error, got %v", err)
	}
}
