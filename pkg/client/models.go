package client

import "time"

const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// Order statuses, in the only order an order may move through them.
const (
	StatusPending      = "pending"
	StatusAccepted     = "accepted"
	StatusInProduction = "in production"
	StatusSupplied     = "supplied"
	StatusCompleted    = "completed"
)

type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Phone     string    `json:"phone,omitempty"`
	Address   Address   `json:"address"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Media struct {
	URL      string `json:"url"`
	Type     string `json:"type"`
	PublicID string `json:"publicId,omitempty"`
}

type Variant struct {
	ID       string  `json:"id,omitempty"`
	Size     string  `json:"size,omitempty"`
	Color    string  `json:"color,omitempty"`
	Material string  `json:"material,omitempty"`
	Price    float64 `json:"price"`
	Stock    int     `json:"stock"`
}

type Product struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description"`
	BasePrice    float64   `json:"basePrice"`
	Category     string    `json:"category"`
	Variants     []Variant `json:"variants"`
	Media        []Media   `json:"media"`
	CODAvailable bool      `json:"codAvailable"`
	Customizable bool      `json:"customizable"`
	IsFeatured   bool      `json:"isFeatured"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Thumbnail returns the first image URL, or "".
func (p *Product) Thumbnail() string {
	for _, m := range p.Media {
		if m.Type == "image" {
			return m.URL
		}
	}
	return ""
}

// Variant returns the variant with the given id.
func (p *Product) Variant(id string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

type VariantSnapshot struct {
	Size     string  `json:"size,omitempty"`
	Color    string  `json:"color,omitempty"`
	Material string  `json:"material,omitempty"`
	Price    float64 `json:"price"`
}

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
	Status          string      `json:"status"`
	PaymentInfo     PaymentInfo `json:"paymentInfo"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// GatewayOrder is the payment-gateway order the hosted checkout is opened with.
// Amount is in minor units.
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	KeyID    string `json:"keyId"`
}

type Artwork struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Media        []Media   `json:"media"`
	UploadedBy   string    `json:"uploadedBy"`
	IsPredefined bool      `json:"isPredefined"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Subscriber struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	SubscribedAt time.Time `json:"subscribedAt"`
}

type TopProduct struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int64   `json:"quantity"`
	Revenue   float64 `json:"revenue"`
}

type MonthlyRevenue struct {
	Month   string  `json:"month"`
	Orders  int64   `json:"orders"`
	Revenue float64 `json:"revenue"`
}

type Analytics struct {
	TotalOrders      int64            `json:"totalOrders"`
	TotalRevenue     float64          `json:"totalRevenue"`
	PaidRevenue      float64          `json:"paidRevenue"`
	OrdersByStatus   map[string]int64 `json:"ordersByStatus"`
	TopProducts      []TopProduct     `json:"topProducts"`
	MonthlyRevenue   []MonthlyRevenue `json:"monthlyRevenue"`
	TotalProducts    int64            `json:"totalProducts"`
	TotalUsers       int64            `json:"totalUsers"`
	TotalSubscribers int64            `json:"totalSubscribers"`
}

// Page is one page of a paginated listing.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}
