package ports

import (
	"context"

	"github.com/printcraft/storefront/internal/core/domain"
)

// VariantInput describes a product variant. An empty ID creates a new variant.
type VariantInput struct {
	ID       string
	Size     string
	Color    string
	Material string
	Price    float64
	Stock    int
}

// ProductInput carries the product fields sent by the admin dashboard. Nil
// flags keep their current value on update and take the defaults on create.
type ProductInput struct {
	Title        string
	Description  string
	BasePrice    float64
	Category     string
	Variants     []VariantInput
	Media        []domain.Media // create: external URLs; update: media to keep, nil keeps all
	CODAvailable *bool
	Customizable *bool
	IsFeatured   *bool
	IsActive     *bool
}

// ProductPage is a page of catalogue results.
type ProductPage struct {
	Items      []*domain.Product `json:"items"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"totalPages"`
}

type ProductService interface {
	List(ctx context.Context, filter ProductFilter) (*ProductPage, error)
	// Get resolves a product by id or slug. Inactive products are only
	// returned when includeInactive is set.
	Get(ctx context.Context, idOrSlug string, includeInactive bool) (*domain.Product, error)
	Create(ctx context.Context, input ProductInput, uploads []Upload) (*domain.Product, error)
	Update(ctx context.Context, id string, input ProductInput, uploads []Upload) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}
