package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/printcraft/storefront/internal/core/domain"
	"github.com/printcraft/storefront/internal/core/ports"
)

// ArtworkService manages customer and predefined artwork uploads.
type ArtworkService struct {
	repo   ports.ArtworkRepository
	media  ports.MediaPipeline
	logger zerolog.Logger
}

func NewArtworkService(repo ports.ArtworkRepository, media ports.MediaPipeline, logger zerolog.Logger) *ArtworkService {
	return &ArtworkService{repo: repo, media: media, logger: logger}
}

func (s *ArtworkService) List(ctx context.Context, f ports.ListArtworksFilter) ([]*domain.Artwork, error) {
	return s.repo.List(ctx, f)
}

// Get returns an artwork visible to viewer: predefined artworks, the
// viewer's own uploads, or anything for admins.
func (s *ArtworkService) Get(ctx context.Context, id string, viewer ports.Viewer) (*domain.Artwork, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.IsPredefined && !viewer.IsAdmin() && !a.OwnedBy(viewer.UserID) {
		return nil, domain.ErrForbidden
	}
	return a, nil
}

// Create stores a new artwork. Only admins may publish predefined artworks.
func (s *ArtworkService) Create(ctx context.Context, in ports.ArtworkInput, viewer ports.Viewer, uploads []ports.Upload) (*domain.Artwork, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if len(uploads) == 0 {
		return nil, fmt.Errorf("%w: at least one file is required", domain.ErrInvalidInput)
	}

	staged, err := s.media.Stage(ctx, uploads)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.Artwork{
		Title:        title,
		Description:  strings.TrimSpace(in.Description),
		Media:        stagedMedia(staged),
		UploadedBy:   viewer.UserID,
		IsPredefined: in.IsPredefined && viewer.IsAdmin(),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		s.media.Discard(staged)
		return nil, err
	}

	s.media.Migrate(s.repo, created.ID, staged)
	s.logger.Info().Str("artwork_id", created.ID).Str("user_id", viewer.UserID).Msg("artwork uploaded")
	return created, nil
}

// Delete removes an artwork owned by viewer (or any artwork for admins).
func (s *ArtworkService) Delete(ctx context.Context, id string, viewer ports.Viewer) error {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !viewer.IsAdmin() && !a.OwnedBy(viewer.UserID) {
		return domain.ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.media.Purge(id, a.Media)
	s.logger.Info().Str("artwork_id", id).Str("user_id", viewer.UserID).Msg("artwork deleted")
	return nil
}
