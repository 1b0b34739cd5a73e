package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/printcraft/storefront/internal/core/domain"
	"github.com/printcraft/storefront/internal/core/ports"
)

func TestArtworkHandler_Create(t *testing.T) {
	stub := &stubArtworkService{
		createFn: func(ctx context.Context, in ports.ArtworkInput, viewer ports.Viewer, uploads []ports.Upload) (*domain.Artwork, error) {
			if in.Title != "Sunset" || in.Description != "Watercolour" || !in.IsPredefined {
				t.Fatalf("unexpected input: %+v", in)
			}
			if viewer.UserID != "u1" {
				t.Fatalf("unexpected viewer: %+v", viewer)
			}
			if len(uploads) != 2 || uploads[0].Filename != "sunset.png" || uploads[1].Filename != "sunset.pdf" {
				t.Fatalf("expected files from both file and media fields, got %+v", uploads)
			}
			return &domain.Artwork{ID: "a1", Title: in.Title, UploadedBy: viewer.UserID}, nil
		},
	}
	handler := NewArtworkHandler(stub)

	e := newTestEcho()
	req := multipartRequest(t, http.MethodPost, "/api/v1/artworks",
		map[string]string{"title": "Sunset", "description": "Watercolour", "isPredefined": "true"},
		formFile{"file", "sunset.png", "image/png", "png"},
		formFile{"media", "sunset.pdf", "application/pdf", "pdf"},
	)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	asUser(c, "u1", domain.RoleCustomer)

	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestArtworkHandler_Create_RejectsBadForms(t *testing.T) {
	handler := NewArtworkHandler(&stubArtworkService{})
	e := newTestEcho()

	c := e.NewContext(jsonRequest(http.MethodPost, "/api/v1/artworks", `{"title":"Sunset"}`), httptest.NewRecorder())
	asUser(c, "u1", domain.RoleCustomer)
	if err := handler.Create(c); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for JSON body, got %v", err)
	}

	req := multipartRequest(t, http.MethodPost, "/api/v1/artworks", map[string]string{"title": "Sunset", "isPredefined": "sometimes"})
	c = e.NewContext(req, httptest.NewRecorder())
	asUser(c, "u1", domain.RoleCustomer)
	if err := handler.Create(c); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for isPredefined, got %v", err)
	}
}

func TestArtworkHandler_List_Filter(t *testing.T) {
	stub := &stubArtworkService{
		listFn: func(ctx context.Context, f ports.ListArtworksFilter) ([]*domain.Artwork, error) {
			if f.Viewer.UserID != "u1" || f.Predefined == nil || *f.Predefined {
				t.Fatalf("unexpected filter: %+v", f)
			}
			return []*domain.Artwork{{ID: "a1"}}, nil
		},
	}
	handler := NewArtworkHandler(stub)

	e := newTestEcho()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/v1/artworks?predefined=false", nil), rec)
	asUser(c, "u1", domain.RoleCustomer)

	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestArtworkHandler_Delete_Forbidden(t *testing.T) {
	stub := &stubArtworkService{
		deleteFn: func(ctx context.Context, id string, viewer ports.Viewer) error {
			return domain.ErrForbidden
		},
	}
	handler := NewArtworkHandler(stub)

	e := newTestEcho()
	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("a1")
	asUser(c, "u2", domain.RoleCustomer)

	if err := handler.Delete(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
