// Package cloudinary adapts the Cloudinary SDK to ports.MediaStore.
package cloudinary

import (
	"context"
	"errors"
	"fmt"

	cld "github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/printcraft/storefront/internal/core/domain"
)

type Store struct {
	client *cld.Cloudinary
	folder string
}

func NewStore(cloudName, apiKey, apiSecret, folder string) (*Store, error) {
	client, err := cld.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	return &Store{client: client, folder: folder}, nil
}

// resourceType maps media types onto Cloudinary resource types.
func resourceType(mediaType string) string {
	switch mediaType {
	case domain.MediaImage, domain.MediaVideo:
		return mediaType
	default:
		return "raw"
	}
}

func (s *Store) Upload(ctx context.Context, localPath, mediaType string) (domain.Media, error) {
	res, err := s.client.Upload.Upload(ctx, localPath, uploader.UploadParams{
		Folder:       s.folder,
		ResourceType: resourceType(mediaType),
	})
	if err != nil {
		return domain.Media{}, fmt.Errorf("cloudinary upload: %w", err)
	}
	if res.Error.Message != "" {
		return domain.Media{}, fmt.Errorf("cloudinary upload: %w", errors.New(res.Error.Message))
	}
	return domain.Media{URL: res.SecureURL, Type: mediaType, PublicID: res.PublicID}, nil
}

func (s *Store) Destroy(ctx context.Context, publicID, mediaType string) error {
	res, err := s.client.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceType(mediaType),
	})
	if err != nil {
		return fmt.Errorf("cloudinary destroy %s: %w", publicID, err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy %s: %s", publicID, res.Error.Message)
	}
	return nil
}
