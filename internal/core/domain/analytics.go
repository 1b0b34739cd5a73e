package domain

// Analytics is the admin dashboard summary.
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
