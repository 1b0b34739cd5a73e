package handler

import (
	"context"

	"github.com/printcraft/storefront/internal/core/domain"
	"github.com/printcraft/storefront/internal/core/ports"
)

// Each stub embeds its port so only the methods a test exercises need a
// function; calling anything else panics.

type stubProductService struct {
	ports.ProductService
	listFn   func(ctx context.Context, f ports.ProductFilter) (*ports.ProductPage, error)
	getFn    func(ctx context.Context, idOrSlug string, includeInactive bool) (*domain.Product, error)
	createFn func(ctx context.Context, in ports.ProductInput, uploads []ports.Upload) (*domain.Product, error)
	updateFn func(ctx context.Context, id string, in ports.ProductInput, uploads []ports.Upload) (*domain.Product, error)
}

func (s *stubProductService) List(ctx context.Context, f ports.ProductFilter) (*ports.ProductPage, error) {
	return s.listFn(ctx, f)
}

func (s *stubProductService) Get(ctx context.Context, idOrSlug string, includeInactive bool) (*domain.Product, error) {
	return s.getFn(ctx, idOrSlug, includeInactive)
}

func (s *stubProductService) Create(ctx context.Context, in ports.ProductInput, uploads []ports.Upload) (*domain.Product, error) {
	return s.createFn(ctx, in, uploads)
}

func (s *stubProductService) Update(ctx context.Context, id string, in ports.ProductInput, uploads []ports.Upload) (*domain.Product, error) {
	return s.updateFn(ctx, id, in, uploads)
}

type stubOrderService struct {
	ports.OrderService
	paymentFn  func(ctx context.Context, amount float64, currency string) (*domain.GatewayOrder, error)
	checkoutFn func(ctx context.Context, in ports.CheckoutInput) (*domain.Order, error)
	codFn      func(ctx context.Context, in ports.CheckoutInput) (*domain.Order, error)
	getFn      func(ctx context.Context, id string, viewer ports.Viewer) (*domain.Order, error)
	statusFn   func(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
	receiptFn  func(ctx context.Context, id string, viewer ports.Viewer) ([]byte, error)
}

func (s *stubOrderService) CreatePaymentOrder(ctx context.Context, amount float64, currency string) (*domain.GatewayOrder, error) {
	return s.paymentFn(ctx, amount, currency)
}

func (s *stubOrderService) Checkout(ctx context.Context, in ports.CheckoutInput) (*domain.Order, error) {
	return s.checkoutFn(ctx, in)
}

func (s *stubOrderService) CheckoutCOD(ctx context.Context, in ports.CheckoutInput) (*domain.Order, error) {
	return s.codFn(ctx, in)
}

func (s *stubOrderService) Get(ctx context.Context, id string, viewer ports.Viewer) (*domain.Order, error) {
	return s.getFn(ctx, id, viewer)
}

func (s *stubOrderService) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	return s.statusFn(ctx, id, status)
}

func (s *stubOrderService) Receipt(ctx context.Context, id string, viewer ports.Viewer) ([]byte, error) {
	return s.receiptFn(ctx, id, viewer)
}

type stubUserService struct {
	ports.UserService
	updateProfileFn func(ctx context.Context, id string, in ports.UpdateProfileInput) (*domain.User, error)
	updateFn        func(ctx context.Context, id string, in ports.AdminUpdateUserInput) (*domain.User, error)
	deleteManyFn    func(ctx context.Context, ids []string) (int64, error)
}

func (s *stubUserService) UpdateProfile(ctx context.Context, id string, in ports.UpdateProfileInput) (*domain.User, error) {
	return s.updateProfileFn(ctx, id, in)
}

func (s *stubUserService) Update(ctx context.Context, id string, in ports.AdminUpdateUserInput) (*domain.User, error) {
	return s.updateFn(ctx, id, in)
}

func (s *stubUserService) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	return s.deleteManyFn(ctx, ids)
}

type stubArtworkService struct {
	ports.ArtworkService
	listFn   func(ctx context.Context, f ports.ListArtworksFilter) ([]*domain.Artwork, error)
	createFn func(ctx context.Context, in ports.ArtworkInput, viewer ports.Viewer, uploads []ports.Upload) (*domain.Artwork, error)
	deleteFn func(ctx context.Context, id string, viewer ports.Viewer) error
}

func (s *stubArtworkService) List(ctx context.Context, f ports.ListArtworksFilter) ([]*domain.Artwork, error) {
	return s.listFn(ctx, f)
}

func (s *stubArtworkService) Create(ctx context.Context, in ports.ArtworkInput, viewer ports.Viewer, uploads []ports.Upload) (*domain.Artwork, error) {
	return s.createFn(ctx, in, viewer, uploads)
}

func (s *stubArtworkService) Delete(ctx context.Context, id string, viewer ports.Viewer) error {
	return s.deleteFn(ctx, id, viewer)
}

type stubNewsletterService struct {
	ports.NewsletterService
	subscribeFn func(ctx context.Context, email string) (*domain.Subscriber, error)
	sendFn      func(ctx context.Context, subject, html string) (int, error)
}

func (s *stubNewsletterService) Subscribe(ctx context.Context, email string) (*domain.Subscriber, error) {
	return s.subscribeFn(ctx, email)
}

func (s *stubNewsletterService) Send(ctx context.Context, subject, html string) (int, error) {
	return s.sendFn(ctx, subject, html)
}

type stubAnalyticsService struct {
	dashboard *domain.Analytics
	err       error
}

func (s *stubAnalyticsService) Dashboard(context.Context) (*domain.Analytics, error) {
	return s.dashboard, s.err
}
