package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/printcraft/storefront/internal/core/domain"
	"github.com/printcraft/storefront/internal/core/ports"
)

func TestProductHandler_List_ParsesQuery(t *testing.T) {
	var got ports.ProductFilter
	stub := &stubProductService{
		listFn: func(ctx context.Context, f ports.ProductFilter) (*ports.ProductPage, error) {
			got = f
			return &ports.ProductPage{Page: 2, Limit: 10}, nil
		},
	}
	handler := NewProductHandler(stub)

	for _, role := range []string{"", domain.RoleCustomer, domain.RoleAdmin} {
		e := newTestEcho()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products?category=mugs&minPrice=100&maxPrice=500.5&search=photo&featured=true&includeInactive=true&sort=price_asc&page=2&limit=10", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != "" {
			asUser(c, "u1", role)
		}

		if err := handler.List(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got.Category != "mugs" || got.Search != "photo" || got.Sort != ports.SortPriceAsc || got.Page != 2 || got.Limit != 10 {
			t.Fatalf("unexpected filter: %+v", got)
		}
		if got.MinPrice == nil || *got.MinPrice != 100 || got.MaxPrice == nil || *got.MaxPrice != 500.5 {
			t.Fatalf("unexpected price range: %v %v", got.MinPrice, got.MaxPrice)
		}
		if got.Featured == nil || !*got.Featured {
			t.Fatalf("featured not parsed")
		}
		if got.IncludeInactive != (role == domain.RoleAdmin) {
			t.Fatalf("role %q: includeInactive must only be honoured for admins", role)
		}
	}
}

func TestProductHandler_List_RejectsMalformedQuery(t *testing.T) {
	handler := NewProductHandler(&stubProductService{})

	for _, q := range []string{"minPrice=cheap", "featured=maybe", "page=first"} {
		e := newTestEcho()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/v1/products?"+q, nil), httptest.NewRecorder())

		if err := handler.List(c); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", q, err)
		}
	}
}

func TestProductHandler_Get_AdminSeesInactive(t *testing.T) {
	var include bool
	stub := &stubProductService{
		getFn: func(ctx context.Context, idOrSlug string, includeInactive bool) (*domain.Product, error) {
			if idOrSlug != "photo-mug" {
				t.Fatalf("unexpected id %q", idOrSlug)
			}
			include = includeInactive
			return &domain.Product{ID: "p1", Slug: idOrSlug}, nil
		},
	}
	handler := NewProductHandler(stub)

	e := newTestEcho()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("photo-mug")
	asUser(c, "admin1", domain.RoleAdmin)

	if err := handler.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !include {
		t.Fatalf("admin lookups must include inactive products")
	}
}

func TestProductHandler_Create_JSON(t *testing.T) {
	stub := &stubProductService{
		createFn: func(ctx context.Context, in ports.ProductInput, uploads []ports.Upload) (*domain.Product, error) {
			if in.Title != "Photo Mug" || in.BasePrice != 299 || len(in.Variants) != 1 || in.Variants[0].Size != "M" {
				t.Fatalf("unexpected input: %+v", in)
			}
			if in.CODAvailable == nil || *in.CODAvailable || in.IsActive != nil {
				t.Fatalf("flags must be forwarded as given: %+v", in)
			}
			if len(uploads) != 0 {
				t.Fatalf("JSON requests carry no uploads")
			}
			return &domain.Product{ID: "p1", Title: in.Title}, nil
		},
	}
	handler := NewProductHandler(stub)

	e := newTestEcho()
	req := jsonRequest(http.MethodPost, "/api/v1/products", `{"title":"Photo Mug","basePrice":299,"codAvailable":false,"variants":[{"size":"M","stock":3}]}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestProductHandler_Create_ValidationFailsBeforeService(t *testing.T) {
	stub := &stubProductService{
		createFn: func(ctx context.Context, in ports.ProductInput, uploads []ports.Upload) (*domain.Product, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewProductHandler(stub)

	for _, body := range []string{
		`{"basePrice":10}`,
		`{"title":"Mug","basePrice":-1}`,
		`{"title":"Mug","variants":[{"size":"M","stock":-2}]}`,
		`{"title":`,
	} {
		e := newTestEcho()
		c := e.NewContext(jsonRequest(http.MethodPost, "/api/v1/products", body), httptest.NewRecorder())

		if err := handler.Create(c); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", body, err)
		}
	}
}

func TestProductHandler_Update_Multipart(t *testing.T) {
	stub := &stubProductService{
		updateFn: func(ctx context.Context, id string, in ports.ProductInput, uploads []ports.Upload) (*domain.Product, error) {
			if id != "p1" || in.Title != "Canvas Print" || len(in.Media) != 1 {
				t.Fatalf("unexpected update: %s %+v", id, in)
			}
			if len(uploads) != 2 || uploads[0].Filename != "front.png" || uploads[0].ContentType != "image/png" || uploads[1].ContentType != "video/mp4" {
				t.Fatalf("unexpected uploads: %+v", uploads)
			}
			if contents := readUploads(t, uploads); contents[0] != "png-bytes" || contents[1] != "mp4-bytes" {
				t.Fatalf("unexpected contents: %v", contents)
			}
			return &domain.Product{ID: id, Title: in.Title}, nil
		},
	}
	handler := NewProductHandler(stub)

	e := newTestEcho()
	req := multipartRequest(t, http.MethodPut, "/api/v1/products/p1",
		map[string]string{"payload": `{"title":"Canvas Print","basePrice":1499,"media":[{"url":"https://cdn/a.jpg","type":"image","publicId":"a"}]}`},
		formFile{"media", "front.png", "image/png", "png-bytes"},
		formFile{"media", "clip.mp4", "video/mp4", "mp4-bytes"},
	)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("p1")

	if err := handler.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestProductHandler_Update_OmittedMediaStaysNil(t *testing.T) {
	var got []ports.ProductInput
	stub := &stubProductService{
		updateFn: func(ctx context.Context, id string, in ports.ProductInput, uploads []ports.Upload) (*domain.Product, error) {
			got = append(got, in)
			return &domain.Product{ID: id, Title: in.Title}, nil
		},
	}
	handler := NewProductHandler(stub)

	for _, body := range []string{
		`{"title":"Photo Mug","basePrice":279}`,
		`{"title":"Photo Mug","basePrice":279,"media":[]}`,
	} {
		e := newTestEcho()
		req := httptest.NewRequest(http.MethodPut, "/api/v1/products/p1", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetParamNames("id")
		c.SetParamValues("p1")
		if err := handler.Update(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
	}

	if len(got) != 2 {
		t.Fatalf("expected two updates, got %d", len(got))
	}
	if got[0].Media != nil {
		t.Fatalf("omitted media must reach the service as nil, got %+v", got[0].Media)
	}
	if got[1].Media == nil || len(got[1].Media) != 0 {
		t.Fatalf("explicit empty media must stay empty and non-nil, got %+v", got[1].Media)
	}
}

func TestProductHandler_Create_MultipartRequiresPayload(t *testing.T) {
	handler := NewProductHandler(&stubProductService{})

	for _, fields := range []map[string]string{
		{},
		{"payload": "not json"},
		{"payload": `{"basePrice":5}`},
	} {
		e := newTestEcho()
		req := multipartRequest(t, http.MethodPost, "/api/v1/products", fields, formFile{"media", "a.png", "image/png", "x"})
		c := e.NewContext(req, httptest.NewRecorder())

		if err := handler.Create(c); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("%v: expected ErrInvalidInput, got %v", fields, err)
		}
	}
}
