package ports

import (
	"context"
	"io"

	"github.com/printcraft/storefront/internal/core/domain"
)

// Upload is a file received from a multipart request.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// FileStager writes uploads to local disk where they are served until migrated.
type FileStager interface {
	Stage(ctx context.Context, upload Upload) (domain.StagedFile, error)
	Remove(localPath string) error
	// PathFor maps a public local URL back to its file, reporting false for foreign URLs.
	PathFor(url string) (string, bool)
}

// MediaStore is the cloud media host.
type MediaStore interface {
	Upload(ctx context.Context, localPath, mediaType string) (domain.Media, error)
	Destroy(ctx context.Context, publicID, mediaType string) error
}

// MediaOwner is a document that embeds media and can have a staged URL
// swapped for its hosted counterpart. ReplaceMedia wraps
// domain.ErrMediaDetached when the owner is gone or no longer lists the URL.
type MediaOwner interface {
	ReplaceMedia(ctx context.Context, ownerID, localURL string, hosted domain.Media) error
}

// MediaPipeline stages uploads and migrates them in the background.
type MediaPipeline interface {
	Stage(ctx context.Context, uploads []Upload) ([]domain.StagedFile, error)
	Migrate(owner MediaOwner, ownerID string, files []domain.StagedFile)
	Discard(files []domain.StagedFile)
	Purge(ownerID string, media []domain.Media)
}
