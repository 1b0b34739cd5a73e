package domain

import "time"

// Variant is a purchasable configuration of a product. A zero Price means the
// product base price applies.
type Variant struct {
	ID       string  `json:"id"`
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

// FindVariant returns the variant with the given id.
func (p *Product) FindVariant(id string) (*Variant, bool) {
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i], true
		}
	}
	return nil, false
}

// Thumbnail is the URL of the first image, falling back to the first media item.
func (p *Product) Thumbnail() string {
	for _, m := range p.Media {
		if m.Type == MediaImage {
			return m.URL
		}
	}
	if len(p.Media) > 0 {
		return p.Media[0].URL
	}
	return ""
}

// PriceFor returns the unit price for v, or the base price when v is nil or unpriced.
func (p *Product) PriceFor(v *Variant) float64 {
	if v != nil && v.Price > 0 {
		return v.Price
	}
	return p.BasePrice
}
