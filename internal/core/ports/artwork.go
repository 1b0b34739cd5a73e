package ports

import (
	"context"

	"github.com/printcraft/storefront/internal/core/domain"
)

// ListArtworksFilter scopes artwork listings. A non-admin viewer only sees
// predefined artworks and their own uploads.
type ListArtworksFilter struct {
	Viewer     Viewer
	Predefined *bool
}

type ArtworkRepository interface {
	MediaOwner

	Create(ctx context.Context, a *domain.Artwork) (*domain.Artwork, error)
	FindByID(ctx context.Context, id string) (*domain.Artwork, error)
	List(ctx context.Context, filter ListArtworksFilter) ([]*domain.Artwork, error)
	Delete(ctx context.Context, id string) error
}

// ArtworkInput carries the upload form fields.
type ArtworkInput struct {
	Title        string
	Description  string
	IsPredefined bool
}

type ArtworkService interface {
	List(ctx context.Context, filter ListArtworksFilter) ([]*domain.Artwork, error)
	Get(ctx context.Context, id string, viewer Viewer) (*domain.Artwork, error)
	Create(ctx context.Context, input ArtworkInput, viewer Viewer, uploads []Upload) (*domain.Artwork, error)
	Delete(ctx context.Context, id string, viewer Viewer) error
}
