package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/printcraft/storefront/internal/core/domain"
	"github.com/printcraft/storefront/internal/core/ports"
)

// ProductHandler handles the catalogue endpoints.
type ProductHandler struct {
	service ports.ProductService
}

func NewProductHandler(service ports.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

type variantRequest struct {
	ID       string  `json:"id,omitempty"`
	Size     string  `json:"size,omitempty"`
	Color    string  `json:"color,omitempty"`
	Material string  `json:"material,omitempty"`
	Price    float64 `json:"price" validate:"gte=0"`
	Stock    int     `json:"stock" validate:"gte=0"`
}

type productRequest struct {
	Title        string           `json:"title" validate:"required"`
	Description  string           `json:"description"`
	BasePrice    float64          `json:"basePrice" validate:"gte=0"`
	Category     string           `json:"category"`
	Variants     []variantRequest `json:"variants" validate:"dive"`
	Media        []domain.Media   `json:"media"`
	CODAvailable *bool            `json:"codAvailable"`
	Customizable *bool            `json:"customizable"`
	IsFeatured   *bool            `json:"isFeatured"`
	IsActive     *bool            `json:"isActive"`
}

func (r productRequest) toInput() ports.ProductInput {
	variants := make([]ports.VariantInput, 0, len(r.Variants))
	for _, v := range r.Variants {
		variants = append(variants, ports.VariantInput{
			ID:       v.ID,
			Size:     v.Size,
			Color:    v.Color,
			Material: v.Material,
			Price:    v.Price,
			Stock:    v.Stock,
		})
	}
	return ports.ProductInput{
		Title:        r.Title,
		Description:  r.Description,
		BasePrice:    r.BasePrice,
		Category:     r.Category,
		Variants:     variants,
		Media:        r.Media,
		CODAvailable: r.CODAvailable,
		Customizable: r.Customizable,
		IsFeatured:   r.IsFeatured,
		IsActive:     r.IsActive,
	}
}

// bindProduct reads a product either from a JSON body or from the payload
// field of a multipart form, together with the uploaded media files.
func bindProduct(c echo.Context) (ports.ProductInput, []ports.Upload, func(), error) {
	noop := func() {}
	var req productRequest

	if !isMultipart(c) {
		if err := bindAndValidate(c, &req); err != nil {
			return ports.ProductInput{}, nil, noop, err
		}
		return req.toInput(), nil, noop, nil
	}

	payload := c.FormValue("payload")
	if payload == "" {
		return ports.ProductInput{}, nil, noop, fmt.Errorf("%w: payload is required", domain.ErrInvalidInput)
	}
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return ports.ProductInput{}, nil, noop, fmt.Errorf("%w: payload must be valid JSON", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return ports.ProductInput{}, nil, noop, err
	}
	uploads, closeUploads, err := formUploads(c, "media")
	if err != nil {
		return ports.ProductInput{}, nil, noop, err
	}
	return req.toInput(), uploads, closeUploads, nil
}

// List returns a page of products.
//
// @Summary      List products
// @Tags         products
// @Produce      json
// @Param        category         query     string   false  "Exact category"
// @Param        minPrice         query     number   false  "Minimum base price"
// @Param        maxPrice         query     number   false  "Maximum base price"
// @Param        search           query     string   false  "Case-insensitive match on title or description"
// @Param        featured         query     boolean  false  "Only featured products"
// @Param        includeInactive  query     boolean  false  "Admin only"
// @Param        sort             query     string   false  "newest, price_asc or price_desc"
// @Param        page             query     int      false  "Page (1-based)"
// @Param        limit            query     int      false  "Page size (max 100)"
// @Success      200  {object}  ports.ProductPage
// @Failure      400  {object}  map[string]string
// @Router       /products [get]
func (h *ProductHandler) List(c echo.Context) error {
	f := ports.ProductFilter{
		Category: c.QueryParam("category"),
		Search:   c.QueryParam("search"),
		Sort:     c.QueryParam("sort"),
	}
	var err error
	if f.MinPrice, err = queryFloat(c, "minPrice"); err != nil {
		return err
	}
	if f.MaxPrice, err = queryFloat(c, "maxPrice"); err != nil {
		return err
	}
	if f.Featured, err = queryBool(c, "featured"); err != nil {
		return err
	}
	includeInactive, err := queryBool(c, "includeInactive")
	if err != nil {
		return err
	}
	f.IncludeInactive = includeInactive != nil && *includeInactive && optionalViewer(c).IsAdmin()
	if f.Page, f.Limit, err = paging(c); err != nil {
		return err
	}

	page, err := h.service.List(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// Get returns a product by id or slug.
//
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "Product id or slug"
// @Success      200  {object}  domain.Product
// @Failure      404  {object}  map[string]string
// @Router       /products/{id} [get]
func (h *ProductHandler) Get(c echo.Context) error {
	p, err := h.service.Get(c.Request().Context(), c.Param("id"), optionalViewer(c).IsAdmin())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Create adds a product to the catalogue.
//
// @Summary      Create a product
// @Description  Accepts JSON, or multipart with a payload JSON field and media files.
// @Tags         products
// @Accept       json,mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      productRequest  true  "Product"
// @Success      201   {object}  domain.Product
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /products [post]
func (h *ProductHandler) Create(c echo.Context) error {
	in, uploads, closeUploads, err := bindProduct(c)
	if err != nil {
		return err
	}
	defer closeUploads()

	p, err := h.service.Create(c.Request().Context(), in, uploads)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

// Update replaces the editable fields of a product.
//
// @Summary      Update a product
// @Description  When media is sent, current media missing from it are removed; omit it to keep all media. Uploaded files are appended.
// @Tags         products
// @Accept       json,mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Product id"
// @Param        body  body      productRequest  true  "Product"
// @Success      200   {object}  domain.Product
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /products/{id} [put]
func (h *ProductHandler) Update(c echo.Context) error {
	in, uploads, closeUploads, err := bindProduct(c)
	if err != nil {
		return err
	}
	defer closeUploads()

	p, err := h.service.Update(c.Request().Context(), c.Param("id"), in, uploads)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Delete removes a product and its media.
//
// @Summary      Delete a product
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Product id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  map[string]string
// @Router       /products/{id} [delete]
func (h *ProductHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "product deleted"})
}
