package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/rs/zerolog"

	"github.com/printcraft/storefront/internal/core/domain"
	"github.com/printcraft/storefront/internal/core/ports"
)

// ProductService implements catalogue queries and admin product management.
type ProductService struct {
	repo   ports.ProductRepository
	media  ports.MediaPipeline
	logger zerolog.Logger
}

func NewProductService(repo ports.ProductRepository, media ports.MediaPipeline, logger zerolog.Logger) *ProductService {
	return &ProductService{repo: repo, media: media, logger: logger}
}

func (s *ProductService) List(ctx context.Context, f ports.ProductFilter) (*ports.ProductPage, error) {
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return nil, fmt.Errorf("%w: minPrice must not exceed maxPrice", domain.ErrInvalidInput)
	}
	switch f.Sort {
	case "", ports.SortNewest, ports.SortPriceAsc, ports.SortPriceDesc:
	default:
		return nil, fmt.Errorf("%w: sort must be one of newest, price_asc, price_desc", domain.ErrInvalidInput)
	}
	f.Search = strings.TrimSpace(f.Search)
	f.Page, f.Limit = normalizePage(f.Page, f.Limit)

	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &ports.ProductPage{
		Items:      items,
		Total:      total,
		Page:       f.Page,
		Limit:      f.Limit,
		TotalPages: totalPages(total, f.Limit),
	}, nil
}

func (s *ProductService) Get(ctx context.Context, idOrSlug string, includeInactive bool) (*domain.Product, error) {
	p, err := s.repo.FindByID(ctx, idOrSlug)
	if errors.Is(err, domain.ErrProductNotFound) {
		p, err = s.repo.FindBySlug(ctx, idOrSlug)
	}
	if err != nil {
		return nil, err
	}
	if !p.IsActive && !includeInactive {
		return nil, domain.ErrProductNotFound
	}
	return p, nil
}

func (s *ProductService) Create(ctx context.Context, in ports.ProductInput, uploads []ports.Upload) (*domain.Product, error) {
	if err := validateProductInput(in); err != nil {
		return nil, err
	}

	staged, err := s.media.Stage(ctx, uploads)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &domain.Product{
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		BasePrice:    in.BasePrice,
		Category:     strings.TrimSpace(in.Category),
		Variants:     buildVariants(in.Variants),
		Media:        append(externalMedia(in.Media), stagedMedia(staged)...),
		CODAvailable: boolOr(in.CODAvailable, true),
		Customizable: boolOr(in.Customizable, false),
		IsFeatured:   boolOr(in.IsFeatured, false),
		IsActive:     boolOr(in.IsActive, true),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if p.Slug, err = s.uniqueSlug(ctx, p.Title, ""); err != nil {
		s.media.Discard(staged)
		return nil, err
	}

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		s.media.Discard(staged)
		return nil, err
	}

	s.media.Migrate(s.repo, created.ID, staged)
	s.logger.Info().Str("product_id", created.ID).Str("slug", created.Slug).Int("uploads", len(staged)).Msg("product created")
	return created, nil
}

// Update replaces the editable fields of a product. When in.Media is set,
// current media not listed in it is purged; nil leaves media as is. Uploads
// are appended.
func (s *ProductService) Update(ctx context.Context, id string, in ports.ProductInput, uploads []ports.Upload) (*domain.Product, error) {
	if err := validateProductInput(in); err != nil {
		return nil, err
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	staged, err := s.media.Stage(ctx, uploads)
	if err != nil {
		return nil, err
	}

	var (
		edit    = ports.MediaEdit{Add: stagedMedia(staged)}
		dropped []domain.Media
	)
	if in.Media != nil {
		dropped = droppedMedia(current.Media, in.Media)
		for _, m := range dropped {
			edit.Drop = append(edit.Drop, m.URL)
		}
	}

	next := *current
	next.Title = strings.TrimSpace(in.Title)
	next.Description = in.Description
	next.BasePrice = in.BasePrice
	next.Category = strings.TrimSpace(in.Category)
	next.Variants = buildVariants(in.Variants)
	next.CODAvailable = boolOr(in.CODAvailable, current.CODAvailable)
	next.Customizable = boolOr(in.Customizable, current.Customizable)
	next.IsFeatured = boolOr(in.IsFeatured, current.IsFeatured)
	next.IsActive = boolOr(in.IsActive, current.IsActive)
	next.UpdatedAt = time.Now().UTC()
	if next.Title != current.Title {
		if next.Slug, err = s.uniqueSlug(ctx, next.Title, current.ID); err != nil {
			s.media.Discard(staged)
			return nil, err
		}
	}

	updated, err := s.repo.Update(ctx, &next, edit)
	if err != nil {
		s.media.Discard(staged)
		return nil, err
	}

	s.media.Migrate(s.repo, updated.ID, staged)
	s.media.Purge(updated.ID, dropped)
	s.logger.Info().Str("product_id", updated.ID).Int("uploads", len(staged)).Int("dropped_media", len(dropped)).Msg("product updated")
	return updated, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.media.Purge(id, deleted.Media)
	s.logger.Info().Str("product_id", id).Msg("product deleted")
	return nil
}

// uniqueSlug derives a slug from title, suffixing it when another product
// already owns it.
func (s *ProductService) uniqueSlug(ctx context.Context, title, selfID string) (string, error) {
	base := slug.Make(title)
	if base == "" {
		base = "product"
	}
	candidate := base
	for i := 0; i < 5; i++ {
		existing, err := s.repo.FindBySlug(ctx, candidate)
		if errors.Is(err, domain.ErrProductNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		if existing.ID == selfID {
			return candidate, nil
		}
		candidate = base + "-" + uuid.NewString()[:6]
	}
	return "", fmt.Errorf("%w: could not derive a unique slug for %q", domain.ErrInvalidInput, title)
}

func validateProductInput(in ports.ProductInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if in.BasePrice < 0 {
		return fmt.Errorf("%w: basePrice must not be negative", domain.ErrInvalidInput)
	}
	for i, v := range in.Variants {
		if v.Price < 0 || v.Stock < 0 {
			return fmt.Errorf("%w: variants[%d] price and stock must not be negative", domain.ErrInvalidInput, i)
		}
	}
	return nil
}

func buildVariants(in []ports.VariantInput) []domain.Variant {
	out := make([]domain.Variant, 0, len(in))
	for _, v := range in {
		id := v.ID
		if id == "" {
			id = uuid.NewString()
		}
		out = append(out, domain.Variant{
			ID:       id,
			Size:     v.Size,
			Color:    v.Color,
			Material: v.Material,
			Price:    v.Price,
			Stock:    v.Stock,
		})
	}
	return out
}

func stagedMedia(files []domain.StagedFile) []domain.Media {
	out := make([]domain.Media, 0, len(files))
	for _, f := range files {
		out = append(out, f.Media())
	}
	return out
}

// droppedMedia returns the items of current whose URL is missing from keep.
// Items come from the stored product so a client never chooses what gets
// destroyed on the media host.
func droppedMedia(current, keep []domain.Media) []domain.Media {
	wanted := make(map[string]struct{}, len(keep))
	for _, m := range keep {
		wanted[m.URL] = struct{}{}
	}
	var dropped []domain.Media
	for _, m := range current {
		if _, ok := wanted[m.URL]; !ok {
			dropped = append(dropped, m)
		}
	}
	return dropped
}

// externalMedia keeps client-supplied absolute URLs for a new product. Public
// ids and local paths are dropped: only the pipeline hands those out.
func externalMedia(in []domain.Media) []domain.Media {
	out := make([]domain.Media, 0, len(in))
	for _, m := range in {
		if !strings.HasPrefix(m.URL, "https://") && !strings.HasPrefix(m.URL, "http://") {
			continue
		}
		out = append(out, domain.Media{URL: m.URL, Type: m.Type})
	}
	return out
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
