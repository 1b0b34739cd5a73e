package ports

import (
	"context"

	"github.com/printcraft/storefront/internal/core/domain"
)

const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

// ProductFilter carries all query parameters for listing products.
type ProductFilter struct {
	Category        string   // optional: exact category
	MinPrice        *float64 // optional: basePrice >= MinPrice
	MaxPrice        *float64 // optional: basePrice <= MaxPrice
	Search          string   // optional: case-insensitive match on title or description
	Featured        *bool    // optional
	IncludeInactive bool     // admin only; public listings only see active products
	Sort            string   // newest (default), price_asc, price_desc
	Page            int      // 1-based
	Limit           int      // capped at 100 by the service
}

// MediaEdit is the change to a product's media applied by Update. Items not
// named in Drop are left untouched, including swaps made by a concurrent
// migration.
type MediaEdit struct {
	Drop []string       // URLs to remove
	Add  []domain.Media // appended after the remaining items
}

func (e MediaEdit) Empty() bool {
	return len(e.Drop) == 0 && len(e.Add) == 0
}

// ProductRepository defines persistence operations for the catalogue.
type ProductRepository interface {
	MediaOwner

	Create(ctx context.Context, p *domain.Product) (*domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Product, error)
	// FindByIDs returns the products found among ids keyed by id.
	FindByIDs(ctx context.Context, ids []string) (map[string]*domain.Product, error)
	// Update writes every editable field of p except media, then applies media.
	Update(ctx context.Context, p *domain.Product, media MediaEdit) (*domain.Product, error)
	// Delete removes the product and returns the deleted document.
	Delete(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*domain.Product, int64, error)
	Count(ctx context.Context) (int64, error)
}
