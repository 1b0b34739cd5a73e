package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the fulfilment state of an order.
type OrderStatus string

const (
	StatusPending      OrderStatus = "pending"
	StatusAccepted     OrderStatus = "accepted"
	StatusInProduction OrderStatus = "in production"
	StatusSupplied     OrderStatus = "supplied"
	StatusCompleted    OrderStatus = "completed"
)

const (
	PaymentRazorpay = "razorpay"
	PaymentCOD      = "cod"
)

// validTransitions is linear: each status may only advance to the next one.
var validTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:      {StatusAccepted},
	StatusAccepted:     {StatusInProduction},
	StatusInProduction: {StatusSupplied},
	StatusSupplied:     {StatusCompleted},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusInProduction, StatusSupplied, StatusCompleted:
		return true
	}
	return false
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// VariantSnapshot freezes the variant attributes at order time.
type VariantSnapshot struct {
	Size     string  `json:"size,omitempty"`
	Color    string  `json:"color,omitempty"`
	Material string  `json:"material,omitempty"`
	Price    float64 `json:"price"`
}

// OrderItem is an immutable copy of a cart line resolved against the catalogue.
type OrderItem struct {
	ProductID    string           `json:"productId"`
	VariantID    string           `json:"variantId,omitempty"`
	Name         string           `json:"name"`
	Thumbnail    string           `json:"thumbnail,omitempty"`
	Price        float64          `json:"price"`
	CODAvailable bool             `json:"codAvailable"`
	Quantity     int              `json:"quantity"`
	Variant      *VariantSnapshot `json:"variant,omitempty"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return decimal.NewFromFloat(i.Price).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type PaymentInfo struct {
	PaymentID string    `json:"paymentId,omitempty"`
	OrderID   string    `json:"orderId,omitempty"`
	Signature string    `json:"signature,omitempty"`
	Paid      bool      `json:"paid"`
	Method    string    `json:"method"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Timestamp time.Time `json:"timestamp"`
}

type Order struct {
	ID              string      `json:"id"`
	UserID          string      `json:"userId"`
	Items           []OrderItem `json:"items"`
	TotalAmount     float64     `json:"totalAmount"`
	ShippingAddress Address     `json:"shippingAddress"`
	Status          OrderStatus `json:"status"`
	PaymentInfo     PaymentInfo `json:"paymentInfo"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// OrderTotal sums the line totals of items rounded to two decimal places.
func OrderTotal(items []OrderItem) float64 {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total.Round(2).InexactFloat64()
}

// GatewayOrder is the payment-gateway side order handed to the hosted checkout.
// Amount is expressed in the currency's minor unit.
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	KeyID    string `json:"keyId"`
}
