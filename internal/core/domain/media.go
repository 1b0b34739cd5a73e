package domain

import "strings"

const (
	MediaImage = "image"
	MediaVideo = "video"
	MediaRaw   = "raw"
)

// Media is a file attached to a product or artwork. PublicID is set once the
// file has been migrated to the cloud media host.
type Media struct {
	URL      string `json:"url"`
	Type     string `json:"type"`
	PublicID string `json:"publicId,omitempty"`
}

func (m Media) Hosted() bool {
	return m.PublicID != ""
}

// StagedFile is an upload written to local disk and waiting to be migrated.
type StagedFile struct {
	Name        string
	LocalPath   string
	URL         string
	Type        string
	ContentType string
}

// Media returns the record persisted before migration.
func (f StagedFile) Media() Media {
	return Media{URL: f.URL, Type: f.Type}
}

// MediaTypeFor maps a MIME content type to a media type.
func MediaTypeFor(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return MediaImage
	case strings.HasPrefix(contentType, "video/"):
		return MediaVideo
	default:
		return MediaRaw
	}
}
