package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog"

	"github.com/printcraft/storefront/internal/api/metrics"
	"github.com/printcraft/storefront/internal/core/domain"
	"github.com/printcraft/storefront/internal/core/ports"
)

const (
	// MaxUploadSize is the per-file limit for media uploads.
	MaxUploadSize = 20 << 20

	uploadAttempts = 3
	uploadDelay    = 2 * time.Second
)

// MediaPipeline stages uploads on local disk and migrates them to the cloud
// media host in the background, swapping URLs on the owning document.
type MediaPipeline struct {
	stager ports.FileStager
	store  ports.MediaStore
	queue  ports.TaskQueue
	logger zerolog.Logger
	delay  time.Duration
}

func NewMediaPipeline(stager ports.FileStager, store ports.MediaStore, queue ports.TaskQueue, logger zerolog.Logger) *MediaPipeline {
	return &MediaPipeline{
		stager: stager,
		store:  store,
		queue:  queue,
		logger: logger,
		delay:  uploadDelay,
	}
}

// Stage validates and writes every upload to local disk. On failure the files
// already written are removed.
func (p *MediaPipeline) Stage(ctx context.Context, uploads []ports.Upload) ([]domain.StagedFile, error) {
	for _, u := range uploads {
		if err := validateUpload(u); err != nil {
			return nil, err
		}
	}

	staged := make([]domain.StagedFile, 0, len(uploads))
	for _, u := range uploads {
		f, err := p.stager.Stage(ctx, u)
		if err != nil {
			p.Discard(staged)
			return nil, fmt.Errorf("%w: stage %s: %v", domain.ErrMediaStorage, u.Filename, err)
		}
		staged = append(staged, f)
	}
	return staged, nil
}

func validateUpload(u ports.Upload) error {
	ct := strings.ToLower(u.ContentType)
	if !strings.HasPrefix(ct, "image/") && !strings.HasPrefix(ct, "video/") && ct != "application/pdf" {
		return fmt.Errorf("%w: %s (%s)", domain.ErrUnsupportedMedia, u.Filename, u.ContentType)
	}
	if u.Size > MaxUploadSize {
		return fmt.Errorf("%w: %s exceeds %d MiB", domain.ErrMediaTooLarge, u.Filename, MaxUploadSize>>20)
	}
	return nil
}

// Discard removes staged files that never made it into a stored document.
func (p *MediaPipeline) Discard(files []domain.StagedFile) {
	for _, f := range files {
		if err := p.stager.Remove(f.LocalPath); err != nil {
			p.logger.Warn().Err(err).Str("path", f.LocalPath).Msg("failed to remove staged file")
		}
	}
}

// Migrate schedules the upload of files to the media host. Tasks are keyed by
// owner so migrations and purges of one document run in order. Without a
// media host the staged files keep serving from local disk.
func (p *MediaPipeline) Migrate(owner ports.MediaOwner, ownerID string, files []domain.StagedFile) {
	if len(files) == 0 || p.store == nil {
		return
	}
	p.queue.Enqueue(ports.Task{
		Key:  "media:" + ownerID,
		Name: "media_migrate",
		Run: func(ctx context.Context) error {
			return p.migrate(ctx, owner, ownerID, files)
		},
	})
}

func (p *MediaPipeline) migrate(ctx context.Context, owner ports.MediaOwner, ownerID string, files []domain.StagedFile) error {
	var errs []error
	for _, f := range files {
		started := time.Now()
		hosted, err := p.uploadWithRetry(ctx, f)
		metrics.MediaUploadDuration.Observe(time.Since(started).Seconds())
		if err != nil {
			metrics.MediaUploadsTotal.WithLabelValues("failure").Inc()
			// The local copy keeps serving until an admin re-uploads.
			errs = append(errs, fmt.Errorf("upload %s: %w", f.Name, err))
			continue
		}
		metrics.MediaUploadsTotal.WithLabelValues("success").Inc()

		if err := owner.ReplaceMedia(ctx, ownerID, f.URL, hosted); err != nil {
			if errors.Is(err, domain.ErrMediaDetached) {
				// Owner deleted or edited while uploading: nothing points at either copy.
				p.dropOrphan(ctx, ownerID, f, hosted)
				continue
			}
			errs = append(errs, fmt.Errorf("replace %s: %w", f.URL, err))
			continue
		}
		if err := p.stager.Remove(f.LocalPath); err != nil {
			p.logger.Warn().Err(err).Str("path", f.LocalPath).Msg("failed to remove migrated file")
		}
		p.logger.Info().Str("owner_id", ownerID).Str("public_id", hosted.PublicID).Msg("media migrated")
	}
	return errors.Join(errs...)
}

func (p *MediaPipeline) dropOrphan(ctx context.Context, ownerID string, f domain.StagedFile, hosted domain.Media) {
	if err := p.store.Destroy(ctx, hosted.PublicID, hosted.Type); err != nil {
		p.logger.Warn().Err(err).Str("public_id", hosted.PublicID).Msg("failed to destroy orphaned media")
	}
	if err := p.stager.Remove(f.LocalPath); err != nil {
		p.logger.Warn().Err(err).Str("path", f.LocalPath).Msg("failed to remove orphaned file")
	}
	p.logger.Info().Str("owner_id", ownerID).Str("public_id", hosted.PublicID).Msg("discarded media of detached owner")
}

func (p *MediaPipeline) uploadWithRetry(ctx context.Context, f domain.StagedFile) (domain.Media, error) {
	var hosted domain.Media
	err := retry.Do(
		func() error {
			m, err := p.store.Upload(ctx, f.LocalPath, f.Type)
			if err != nil {
				return err
			}
			hosted = m
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uploadAttempts),
		retry.Delay(p.delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			p.logger.Warn().Err(err).Uint("attempt", n+1).Str("file", f.Name).Msg("media upload failed, retrying")
		}),
	)
	return hosted, err
}

// Purge deletes media dropped from ownerID: hosted files from the media host,
// staged files from local disk. It shares the owner's task key so it runs
// after any migration still pending for that owner.
func (p *MediaPipeline) Purge(ownerID string, media []domain.Media) {
	if len(media) == 0 {
		return
	}
	p.queue.Enqueue(ports.Task{
		Key:  "media:" + ownerID,
		Name: "media_purge",
		Run: func(ctx context.Context) error {
			var errs []error
			for _, m := range media {
				if m.Hosted() {
					if p.store == nil {
						continue
					}
					if err := p.store.Destroy(ctx, m.PublicID, m.Type); err != nil {
						errs = append(errs, fmt.Errorf("destroy %s: %w", m.PublicID, err))
					}
					continue
				}
				if path, ok := p.stager.PathFor(m.URL); ok {
					if err := p.stager.Remove(path); err != nil {
						errs = append(errs, err)
					}
				}
			}
			return errors.Join(errs...)
		},
	})
}
