package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
)

type ProductsAPI struct{ c *Client }

// ProductQuery filters the catalogue. Zero values are not sent.
type ProductQuery struct {
	Category        string
	Search          string
	MinPrice        *float64
	MaxPrice        *float64
	Featured        *bool
	IncludeInactive bool // honoured for admins only
	Sort            string
	Page            int
	Limit           int
}

func (q ProductQuery) values() url.Values {
	v := url.Values{}
	setString(v, "category", q.Category)
	setString(v, "search", q.Search)
	setString(v, "sort", q.Sort)
	if q.MinPrice != nil {
		v.Set("minPrice", strconv.FormatFloat(*q.MinPrice, 'f', -1, 64))
	}
	if q.MaxPrice != nil {
		v.Set("maxPrice", strconv.FormatFloat(*q.MaxPrice, 'f', -1, 64))
	}
	if q.Featured != nil {
		v.Set("featured", strconv.FormatBool(*q.Featured))
	}
	if q.IncludeInactive {
		v.Set("includeInactive", "true")
	}
	setPaging(v, q.Page, q.Limit)
	return v
}

// ProductInput is the admin payload for create and update. Nil flags keep
// the server default on create and the stored value on update. On update a
// nil Media keeps every current item; an empty one removes them all.
type ProductInput struct {
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	BasePrice    float64   `json:"basePrice"`
	Category     string    `json:"category,omitempty"`
	Variants     []Variant `json:"variants,omitempty"`
	Media        []Media   `json:"media"`
	CODAvailable *bool     `json:"codAvailable,omitempty"`
	Customizable *bool     `json:"customizable,omitempty"`
	IsFeatured   *bool     `json:"isFeatured,omitempty"`
	IsActive     *bool     `json:"isActive,omitempty"`
}

func (p *ProductsAPI) List(ctx context.Context, q ProductQuery) (*Page[Product], error) {
	var page Page[Product]
	if err := p.c.do(ctx, http.MethodGet, "/products", q.values(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Get accepts a product id or slug.
func (p *ProductsAPI) Get(ctx context.Context, idOrSlug string) (*Product, error) {
	var out Product
	if err := p.c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(idOrSlug), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *ProductsAPI) Create(ctx context.Context, in ProductInput, files ...File) (*Product, error) {
	return p.save(ctx, http.MethodPost, "/products", in, files)
}

// Update replaces the product. Existing media not listed in in.Media is removed.
func (p *ProductsAPI) Update(ctx context.Context, id string, in ProductInput, files ...File) (*Product, error) {
	return p.save(ctx, http.MethodPut, "/products/"+url.PathEscape(id), in, files)
}

func (p *ProductsAPI) save(ctx context.Context, method, path string, in ProductInput, files []File) (*Product, error) {
	var out Product
	if len(files) == 0 {
		if err := p.c.do(ctx, method, path, nil, in, &out); err != nil {
			return nil, err
		}
		return &out, nil
	}
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	fields := map[string]string{"payload": string(payload)}
	if err := p.c.upload(ctx, method, path, fields, "media", files, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *ProductsAPI) Delete(ctx context.Context, id string) error {
	return p.c.do(ctx, http.MethodDelete, "/products/"+url.PathEscape(id), nil, nil, nil)
}

func setString(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

func setPaging(v url.Values, page, limit int) {
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
}
