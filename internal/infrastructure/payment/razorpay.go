// Package payment adapts the Razorpay SDK to ports.PaymentGateway.
package payment

import (
	"context"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"

	"github.com/printcraft/storefront/internal/core/domain"
)

type Razorpay struct {
	client *razorpay.Client
	keyID  string
	secret string
}

func NewRazorpay(keyID, keySecret string) *Razorpay {
	return &Razorpay{
		client: razorpay.NewClient(keyID, keySecret),
		keyID:  keyID,
		secret: keySecret,
	}
}

func (r *Razorpay) KeyID() string { return r.keyID }

// CreateOrder registers an order with the gateway. amount is in minor units.
func (r *Razorpay) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*domain.GatewayOrder, error) {
	if r.keyID == "" || r.secret == "" {
		return nil, fmt.Errorf("%w: razorpay credentials are not configured", domain.ErrPaymentGateway)
	}
	// The SDK has no context support.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, err := r.client.Order.Create(map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPaymentGateway, err)
	}
	return parseOrder(body)
}

// FetchOrder loads a previously created order so its amount and currency can
// be checked against what is being paid for.
func (r *Razorpay) FetchOrder(ctx context.Context, id string) (*domain.GatewayOrder, error) {
	if r.keyID == "" || r.secret == "" {
		return nil, fmt.Errorf("%w: razorpay credentials are not configured", domain.ErrPaymentGateway)
	}
	if id == "" {
		return nil, fmt.Errorf("%w: order id is required", domain.ErrPaymentGateway)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, err := r.client.Order.Fetch(id, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %v", domain.ErrPaymentGateway, id, err)
	}
	return parseOrder(body)
}

func parseOrder(body map[string]interface{}) (*domain.GatewayOrder, error) {
	id, _ := body["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("%w: response has no order id", domain.ErrPaymentGateway)
	}
	out := &domain.GatewayOrder{ID: id}
	out.Currency, _ = body["currency"].(string)
	out.Receipt, _ = body["receipt"].(string)
	switch v := body["amount"].(type) {
	case float64:
		out.Amount = int64(v)
	case int64:
		out.Amount = v
	case int:
		out.Amount = int64(v)
	}
	return out, nil
}

// VerifySignature checks the HMAC-SHA256 of "orderID|paymentID" with the key secret.
func (r *Razorpay) VerifySignature(orderID, paymentID, signature string) bool {
	if r.secret == "" || orderID == "" || paymentID == "" || signature == "" {
		return false
	}
	return utils.VerifyPaymentSignature(map[string]interface{}{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": paymentID,
		"razorpay_signature":  signature,
	}, signature, r.secret)
}
