package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/printcraft/storefront/internal/api/metrics"
	"github.com/printcraft/storefront/internal/core/domain"
	"github.com/printcraft/storefront/internal/core/ports"
)

const defaultCurrency = "INR"

// OrderService implements checkout, payment capture and fulfilment updates.
type OrderService struct {
	orders   ports.OrderRepository
	products ports.ProductRepository
	users    ports.UserRepository
	gateway  ports.PaymentGateway
	lock     ports.PaymentLock
	queue    ports.TaskQueue
	mailer   ports.Mailer
	receipts ports.ReceiptRenderer
	logger   zerolog.Logger
	now      func() time.Time
}

// OrderDeps groups the collaborators of OrderService.
type OrderDeps struct {
	Orders   ports.OrderRepository
	Products ports.ProductRepository
	Users    ports.UserRepository
	Gateway  ports.PaymentGateway
	Lock     ports.PaymentLock
	Queue    ports.TaskQueue
	Mailer   ports.Mailer
	Receipts ports.ReceiptRenderer
}

func NewOrderService(deps OrderDeps, logger zerolog.Logger) *OrderService {
	return &OrderService{
		orders:   deps.Orders,
		products: deps.Products,
		users:    deps.Users,
		gateway:  deps.Gateway,
		lock:     deps.Lock,
		queue:    deps.Queue,
		mailer:   deps.Mailer,
		receipts: deps.Receipts,
		logger:   logger,
		now:      time.Now,
	}
}

// CreatePaymentOrder registers an order with the payment gateway so the
// client can open the hosted checkout.
func (s *OrderService) CreatePaymentOrder(ctx context.Context, amount float64, currency string) (*domain.GatewayOrder, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be greater than 0", domain.ErrInvalidInput)
	}
	currency = normalizeCurrency(currency)

	minor := decimal.NewFromFloat(amount).Round(2).Shift(2).IntPart()
	gwOrder, err := s.gateway.CreateOrder(ctx, minor, currency, "rcpt_"+uuid.NewString()[:8])
	if err != nil {
		s.logger.Error().Err(err).Float64("amount", amount).Msg("gateway order creation failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrPaymentGateway, err)
	}
	gwOrder.KeyID = s.gateway.KeyID()
	return gwOrder, nil
}

// Checkout verifies the gateway signature and persists a paid order.
func (s *OrderService) Checkout(ctx context.Context, in ports.CheckoutInput) (*domain.Order, error) {
	p := in.Payment
	if p.OrderID == "" || p.PaymentID == "" || p.Signature == "" {
		return nil, fmt.Errorf("%w: orderId, paymentId and signature are required", domain.ErrInvalidInput)
	}
	if !s.gateway.VerifySignature(p.OrderID, p.PaymentID, p.Signature) {
		metrics.OrdersRejectedTotal.WithLabelValues("verification_failed").Inc()
		s.logger.Warn().Str("gateway_order_id", p.OrderID).Str("payment_id", p.PaymentID).Msg("payment signature mismatch")
		return nil, domain.ErrPaymentVerification
	}

	acquired, err := s.lock.Acquire(ctx, p.PaymentID)
	if err != nil {
		// The unique paymentId index still rejects duplicates.
		s.logger.Warn().Err(err).Str("payment_id", p.PaymentID).Msg("payment lock unavailable")
	} else if !acquired {
		metrics.OrdersRejectedTotal.WithLabelValues("duplicate_payment").Inc()
		return nil, domain.ErrPaymentProcessed
	}

	order, err := s.placeOrder(ctx, in, func(items []domain.OrderItem, total float64) (domain.PaymentInfo, error) {
		if err := s.matchGatewayOrder(ctx, p.OrderID, total, in.Currency); err != nil {
			return domain.PaymentInfo{}, err
		}
		return domain.PaymentInfo{
			PaymentID: p.PaymentID,
			OrderID:   p.OrderID,
			Signature: p.Signature,
			Paid:      true,
			Method:    domain.PaymentRazorpay,
			Amount:    total,
			Currency:  normalizeCurrency(in.Currency),
			Timestamp: s.now().UTC(),
		}, nil
	})
	if err != nil {
		if acquired {
			if relErr := s.lock.Release(ctx, p.PaymentID); relErr != nil {
				s.logger.Warn().Err(relErr).Str("payment_id", p.PaymentID).Msg("failed to release payment lock")
			}
		}
		return nil, err
	}
	return order, nil
}

// matchGatewayOrder checks that the gateway order being paid was created for
// exactly the server-computed total.
func (s *OrderService) matchGatewayOrder(ctx context.Context, orderID string, total float64, currency string) error {
	gw, err := s.gateway.FetchOrder(ctx, orderID)
	if err != nil {
		s.logger.Error().Err(err).Str("gateway_order_id", orderID).Msg("gateway order lookup failed")
		return fmt.Errorf("%w: %v", domain.ErrPaymentGateway, err)
	}

	want := decimal.NewFromFloat(total).Round(2).Shift(2).IntPart()
	currency = normalizeCurrency(currency)
	if gw.Amount != want || !strings.EqualFold(gw.Currency, currency) {
		metrics.OrdersRejectedTotal.WithLabelValues("amount_mismatch").Inc()
		s.logger.Warn().
			Str("gateway_order_id", orderID).
			Int64("paid", gw.Amount).
			Str("paid_currency", gw.Currency).
			Int64("expected", want).
			Str("expected_currency", currency).
			Msg("gateway order does not match cart total")
		return domain.ErrPaymentVerification
	}
	return nil
}

// CheckoutCOD persists an unpaid cash-on-delivery order. Every item must be
// COD eligible.
func (s *OrderService) CheckoutCOD(ctx context.Context, in ports.CheckoutInput) (*domain.Order, error) {
	return s.placeOrder(ctx, in, func(items []domain.OrderItem, total float64) (domain.PaymentInfo, error) {
		for _, it := range items {
			if !it.CODAvailable {
				metrics.OrdersRejectedTotal.WithLabelValues("cod_unavailable").Inc()
				return domain.PaymentInfo{}, fmt.Errorf("%w: %s", domain.ErrCODUnavailable, it.Name)
			}
		}
		return domain.PaymentInfo{
			Paid:      false,
			Method:    domain.PaymentCOD,
			Amount:    total,
			Currency:  normalizeCurrency(in.Currency),
			Timestamp: s.now().UTC(),
		}, nil
	})
}

func (s *OrderService) placeOrder(
	ctx context.Context,
	in ports.CheckoutInput,
	payment func(items []domain.OrderItem, total float64) (domain.PaymentInfo, error),
) (*domain.Order, error) {
	if in.UserID == "" {
		return nil, domain.ErrForbidden
	}

	items, err := s.BuildOrderItems(ctx, in.Lines)
	if err != nil {
		return nil, err
	}
	total := domain.OrderTotal(items)

	info, err := payment(items, total)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	order, err := s.orders.Create(ctx, &domain.Order{
		UserID:          in.UserID,
		Items:           items,
		TotalAmount:     total,
		ShippingAddress: in.ShippingAddress,
		Status:          domain.StatusPending,
		PaymentInfo:     info,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrPaymentProcessed) {
			metrics.OrdersRejectedTotal.WithLabelValues("duplicate_payment").Inc()
		}
		return nil, err
	}

	metrics.OrdersCreatedTotal.WithLabelValues(info.Method).Inc()
	s.logger.Info().
		Str("order_id", order.ID).
		Str("user_id", order.UserID).
		Str("method", info.Method).
		Float64("total", order.TotalAmount).
		Msg("order created")

	s.enqueueReceipt(order)
	return order, nil
}

// BuildOrderItems resolves every cart line against the live catalogue and
// returns immutable snapshots. Any unresolvable line fails the whole order.
func (s *OrderService) BuildOrderItems(ctx context.Context, lines []ports.CheckoutLine) ([]domain.OrderItem, error) {
	if len(lines) == 0 {
		return nil, domain.ErrEmptyOrder
	}

	ids := make([]string, 0, len(lines))
	for i, line := range lines {
		if line.ProductID == "" {
			return nil, fmt.Errorf("%w: items[%d].productId is required", domain.ErrInvalidInput, i)
		}
		if line.Quantity < 1 {
			return nil, fmt.Errorf("%w: items[%d].quantity must be at least 1", domain.ErrInvalidInput, i)
		}
		ids = append(ids, line.ProductID)
	}

	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve products: %w", err)
	}

	items := make([]domain.OrderItem, 0, len(lines))
	for _, line := range lines {
		product, ok := products[line.ProductID]
		if !ok || !product.IsActive {
			metrics.OrdersRejectedTotal.WithLabelValues("product_not_found").Inc()
			return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, line.ProductID)
		}

		item := domain.OrderItem{
			ProductID:    product.ID,
			Name:         product.Title,
			Thumbnail:    product.Thumbnail(),
			CODAvailable: product.CODAvailable,
			Quantity:     line.Quantity,
			Price:        product.PriceFor(nil),
		}
		if line.VariantID != "" {
			variant, found := product.FindVariant(line.VariantID)
			if !found {
				metrics.OrdersRejectedTotal.WithLabelValues("variant_not_found").Inc()
				return nil, fmt.Errorf("%w: %s", domain.ErrVariantNotFound, product.Title)
			}
			item.VariantID = variant.ID
			item.Price = product.PriceFor(variant)
			item.Variant = &domain.VariantSnapshot{
				Size:     variant.Size,
				Color:    variant.Color,
				Material: variant.Material,
				Price:    item.Price,
			}
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *OrderService) ListMine(ctx context.Context, userID string) ([]*domain.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

func (s *OrderService) ListAll(ctx context.Context, f ports.ListOrdersFilter) (*ports.OrderPage, error) {
	if f.Status != "" && !domain.OrderStatus(f.Status).Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, f.Status)
	}
	f.Page, f.Limit = normalizePage(f.Page, f.Limit)

	items, total, err := s.orders.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &ports.OrderPage{
		Items:      items,
		Total:      total,
		Page:       f.Page,
		Limit:      f.Limit,
		TotalPages: totalPages(total, f.Limit),
	}, nil
}

// Get returns the order when the viewer owns it or is an admin.
func (s *OrderService) Get(ctx context.Context, id string, viewer ports.Viewer) (*domain.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.IsAdmin() && order.UserID != viewer.UserID {
		return nil, domain.ErrForbidden
	}
	return order, nil
}

// UpdateStatus advances an order to the next fulfilment status. Only status
// and updatedAt change; items are never rewritten.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, order.Status, status)
	}

	updated, err := s.orders.UpdateStatus(ctx, id, order.Status, status)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	metrics.OrderStatusTransitionsTotal.WithLabelValues(string(status)).Inc()
	s.logger.Info().Str("order_id", id).Str("from", string(order.Status)).Str("to", string(status)).Msg("order status updated")
	return updated, nil
}

// Receipt renders the PDF receipt of an order for its owner or an admin.
func (s *OrderService) Receipt(ctx context.Context, id string, viewer ports.Viewer) ([]byte, error) {
	order, err := s.Get(ctx, id, viewer)
	if err != nil {
		return nil, err
	}
	customer, err := s.users.FindByID(ctx, order.UserID)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	return s.receipts.PDF(order, customer)
}

// enqueueReceipt schedules the receipt email. Failures are logged by the
// dispatcher and never affect the stored order.
func (s *OrderService) enqueueReceipt(order *domain.Order) {
	s.queue.Enqueue(ports.Task{
		Key:  "order:" + order.ID,
		Name: "order_receipt",
		Run: func(ctx context.Context) error {
			return s.sendReceipt(ctx, order)
		},
	})
}

func (s *OrderService) sendReceipt(ctx context.Context, order *domain.Order) error {
	customer, err := s.users.FindByID(ctx, order.UserID)
	if err != nil {
		return fmt.Errorf("receipt: load customer: %w", err)
	}
	pdf, err := s.receipts.PDF(order, customer)
	if err != nil {
		return fmt.Errorf("receipt: render pdf: %w", err)
	}
	html, err := s.receipts.HTML(order, customer)
	if err != nil {
		return fmt.Errorf("receipt: render html: %w", err)
	}

	err = s.mailer.Send(ctx, ports.Message{
		To:      []string{customer.Email},
		Subject: "Your order " + shortID(order.ID) + " is confirmed",
		HTML:    html,
		Attachments: []ports.Attachment{{
			Name:        "receipt-" + shortID(order.ID) + ".pdf",
			ContentType: "application/pdf",
			Data:        pdf,
		}},
	})
	if err != nil {
		return fmt.Errorf("receipt: send: %w", err)
	}
	s.logger.Info().Str("order_id", order.ID).Msg("receipt sent")
	return nil
}

func normalizeCurrency(c string) string {
	c = strings.ToUpper(strings.TrimSpace(c))
	if c == "" {
		return defaultCurrency
	}
	return c
}

// shortID is the customer-facing order reference.
func shortID(id string) string {
	if len(id) > 8 {
		return strings.ToUpper(id[len(id)-8:])
	}
	return strings.ToUpper(id)
}
