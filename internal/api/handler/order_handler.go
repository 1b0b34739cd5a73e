package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/printcraft/storefront/internal/core/domain"
	"github.com/printcraft/storefront/internal/core/ports"
)

// OrderHandler handles checkout and order management.
type OrderHandler struct {
	service ports.OrderService
}

func NewOrderHandler(service ports.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

type paymentOrderRequest struct {
	Amount   float64 `json:"amount" validate:"gt=0"`
	Currency string  `json:"currency"`
}

type orderLineRequest struct {
	ProductID string `json:"productId" validate:"required"`
	VariantID string `json:"variantId,omitempty"`
	Quantity  int    `json:"quantity" validate:"min=1"`
}

type addressRequest struct {
	Line1      string `json:"line1" validate:"required"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode" validate:"required"`
	Country    string `json:"country"`
}

func (a addressRequest) toDomain() domain.Address {
	return domain.Address{
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

type paymentConfirmationRequest struct {
	OrderID   string `json:"orderId" validate:"required"`
	PaymentID string `json:"paymentId" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

type codCheckoutRequest struct {
	Items           []orderLineRequest `json:"items" validate:"required,min=1,dive"`
	ShippingAddress addressRequest     `json:"shippingAddress"`
	Currency        string             `json:"currency"`
}

type checkoutRequest struct {
	codCheckoutRequest
	Payment paymentConfirmationRequest `json:"payment"`
}

func (r codCheckoutRequest) toInput(userID string) ports.CheckoutInput {
	lines := make([]ports.CheckoutLine, 0, len(r.Items))
	for _, it := range r.Items {
		lines = append(lines, ports.CheckoutLine{
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			Quantity:  it.Quantity,
		})
	}
	return ports.CheckoutInput{
		UserID:          userID,
		Lines:           lines,
		ShippingAddress: r.ShippingAddress.toDomain(),
		Currency:        r.Currency,
	}
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

// CreatePayment registers a gateway order for the hosted checkout.
//
// @Summary      Create a gateway payment order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      paymentOrderRequest  true  "Amount in major units"
// @Success      200   {object}  domain.GatewayOrder
// @Failure      400   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /orders/payment [post]
func (h *OrderHandler) CreatePayment(c echo.Context) error {
	var req paymentOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	order, err := h.service.CreatePaymentOrder(c.Request().Context(), req.Amount, req.Currency)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}

// Checkout persists a paid order after verifying the gateway signature.
//
// @Summary      Checkout a paid cart
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      checkoutRequest  true  "Cart and payment confirmation"
// @Success      201   {object}  domain.Order
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /orders [post]
func (h *OrderHandler) Checkout(c echo.Context) error {
	viewer, err := ctxViewer(c)
	if err != nil {
		return err
	}
	var req checkoutRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	in := req.toInput(viewer.UserID)
	in.Payment = ports.PaymentConfirmation{
		OrderID:   req.Payment.OrderID,
		PaymentID: req.Payment.PaymentID,
		Signature: req.Payment.Signature,
	}
	order, err := h.service.Checkout(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, order)
}

// CheckoutCOD persists an unpaid cash-on-delivery order.
//
// @Summary      Checkout with cash on delivery
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      codCheckoutRequest  true  "Cart"
// @Success      201   {object}  domain.Order
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /orders/cod [post]
func (h *OrderHandler) CheckoutCOD(c echo.Context) error {
	viewer, err := ctxViewer(c)
	if err != nil {
		return err
	}
	var req codCheckoutRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	order, err := h.service.CheckoutCOD(c.Request().Context(), req.toInput(viewer.UserID))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, order)
}

// Mine lists the caller's orders, newest first.
//
// @Summary      List my orders
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Order
// @Router       /orders/mine [get]
func (h *OrderHandler) Mine(c echo.Context) error {
	viewer, err := ctxViewer(c)
	if err != nil {
		return err
	}
	orders, err := h.service.ListMine(c.Request().Context(), viewer.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}

// List returns a page of all orders.
//
// @Summary      List orders
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Order status"
// @Param        userId  query     string  false  "Customer id"
// @Param        page    query     int     false  "Page (1-based)"
// @Param        limit   query     int     false  "Page size"
// @Success      200     {object}  ports.OrderPage
// @Router       /orders [get]
func (h *OrderHandler) List(c echo.Context) error {
	page, limit, err := paging(c)
	if err != nil {
		return err
	}
	result, err := h.service.ListAll(c.Request().Context(), ports.ListOrdersFilter{
		UserID: c.QueryParam("userId"),
		Status: c.QueryParam("status"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// Get returns an order owned by the caller, or any order for admins.
//
// @Summary      Get an order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Order id"
// @Success      200  {object}  domain.Order
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /orders/{id} [get]
func (h *OrderHandler) Get(c echo.Context) error {
	viewer, err := ctxViewer(c)
	if err != nil {
		return err
	}
	order, err := h.service.Get(c.Request().Context(), c.Param("id"), viewer)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}

// Receipt renders the order receipt as PDF.
//
// @Summary      Download an order receipt
// @Tags         orders
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id   path  string  true  "Order id"
// @Success      200  {file}  binary
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /orders/{id}/receipt [get]
func (h *OrderHandler) Receipt(c echo.Context) error {
	viewer, err := ctxViewer(c)
	if err != nil {
		return err
	}
	id := c.Param("id")
	pdf, err := h.service.Receipt(c.Request().Context(), id, viewer)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", "receipt-"+id+".pdf"))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

// UpdateStatus advances an order to its next status.
//
// @Summary      Update order status
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string         true  "Order id"
// @Param        body  body      statusRequest  true  "Next status"
// @Success      200   {object}  domain.Order
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	var req statusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	order, err := h.service.UpdateStatus(c.Request().Context(), c.Param("id"), domain.OrderStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}
