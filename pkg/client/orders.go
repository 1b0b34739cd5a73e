package client

import (
	"context"
	"net/http"
	"net/url"
)

type OrdersAPI struct{ c *Client }

type CheckoutLine struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId,omitempty"`
	Quantity  int    `json:"quantity"`
}

// PaymentConfirmation is what the hosted checkout hands back on success.
type PaymentConfirmation struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
}

type checkoutRequest struct {
	Items           []CheckoutLine       `json:"items"`
	ShippingAddress Address              `json:"shippingAddress"`
	Currency        string               `json:"currency,omitempty"`
	Payment         *PaymentConfirmation `json:"payment,omitempty"`
}

type OrderQuery struct {
	Status string
	UserID string
	Page   int
	Limit  int
}

// CreatePayment opens a gateway order for amount, in major currency units.
func (o *OrdersAPI) CreatePayment(ctx context.Context, amount float64, currency string) (*GatewayOrder, error) {
	in := struct {
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency,omitempty"`
	}{amount, currency}
	var out GatewayOrder
	if err := o.c.do(ctx, http.MethodPost, "/orders/payment", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Checkout places a paid order once the gateway has confirmed the payment.
func (o *OrdersAPI) Checkout(ctx context.Context, lines []CheckoutLine, ship Address, currency string, payment PaymentConfirmation) (*Order, error) {
	return o.place(ctx, "/orders", checkoutRequest{Items: lines, ShippingAddress: ship, Currency: currency, Payment: &payment})
}

// CheckoutCOD places a cash-on-delivery order. Every product must allow COD.
func (o *OrdersAPI) CheckoutCOD(ctx context.Context, lines []CheckoutLine, ship Address, currency string) (*Order, error) {
	return o.place(ctx, "/orders/cod", checkoutRequest{Items: lines, ShippingAddress: ship, Currency: currency})
}

func (o *OrdersAPI) place(ctx context.Context, path string, in checkoutRequest) (*Order, error) {
	var out Order
	if err := o.c.do(ctx, http.MethodPost, path, nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (o *OrdersAPI) Mine(ctx context.Context) ([]Order, error) {
	var out []Order
	if err := o.c.do(ctx, http.MethodGet, "/orders/mine", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (o *OrdersAPI) List(ctx context.Context, q OrderQuery) (*Page[Order], error) {
	v := url.Values{}
	setString(v, "status", q.Status)
	setString(v, "userId", q.UserID)
	setPaging(v, q.Page, q.Limit)

	var page Page[Order]
	if err := o.c.do(ctx, http.MethodGet, "/orders", v, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (o *OrdersAPI) Get(ctx context.Context, id string) (*Order, error) {
	var out Order
	if err := o.c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Receipt downloads the PDF receipt.
func (o *OrdersAPI) Receipt(ctx context.Context, id string) ([]byte, error) {
	req, err := o.c.newRequest(ctx, http.MethodGet, "/orders/"+url.PathEscape(id)+"/receipt", nil, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/pdf")
	var pdf []byte
	if err := o.c.send(req, &pdf); err != nil {
		return nil, err
	}
	return pdf, nil
}

func (o *OrdersAPI) UpdateStatus(ctx context.Context, id, status string) (*Order, error) {
	var out Order
	in := map[string]string{"status": status}
	if err := o.c.do(ctx, http.MethodPut, "/orders/"+url.PathEscape(id)+"/status", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
