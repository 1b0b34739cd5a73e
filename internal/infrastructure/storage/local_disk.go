// Package storage stages uploaded files on local disk.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/nfnt/resize"
	"github.com/rs/zerolog"

	"github.com/printcraft/storefront/internal/core/domain"
	"github.com/printcraft/storefront/internal/core/ports"
)

const (
	// URLPrefix is where staged files are served from.
	URLPrefix = "/uploads/"
	// MaxImageWidth is the width above which JPEG and PNG uploads are downscaled.
	MaxImageWidth = 1600
)

// LocalDisk writes uploads under dir with random names.
type LocalDisk struct {
	dir    string
	logger zerolog.Logger
}

func NewLocalDisk(dir string, logger zerolog.Logger) (*LocalDisk, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("upload dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("upload dir: %w", err)
	}
	return &LocalDisk{dir: abs, logger: logger}, nil
}

func (d *LocalDisk) Dir() string { return d.dir }

func (d *LocalDisk) Stage(ctx context.Context, u ports.Upload) (domain.StagedFile, error) {
	if err := ctx.Err(); err != nil {
		return domain.StagedFile{}, err
	}

	name := uuid.NewString() + safeExt(u.Filename)
	dst := filepath.Join(d.dir, name)

	var err error
	switch strings.ToLower(u.ContentType) {
	case "image/jpeg", "image/jpg", "image/png":
		err = d.writeImage(dst, u)
	default:
		err = writeFile(dst, u.Reader)
	}
	if err != nil {
		_ = os.Remove(dst)
		return domain.StagedFile{}, err
	}

	return domain.StagedFile{
		Name:        u.Filename,
		LocalPath:   dst,
		URL:         URLPrefix + name,
		Type:        domain.MediaTypeFor(u.ContentType),
		ContentType: u.ContentType,
	}, nil
}

// writeImage downscales wide images. Files that fail to decode are stored as is.
func (d *LocalDisk) writeImage(dst string, u ports.Upload) error {
	raw, err := io.ReadAll(u.Reader)
	if err != nil {
		return fmt.Errorf("read upload: %w", err)
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil || img.Bounds().Dx() <= MaxImageWidth {
		if err != nil {
			d.logger.Debug().Err(err).Str("file", u.Filename).Msg("image not decodable, storing original")
		}
		return writeFile(dst, bytes.NewReader(raw))
	}

	resized := resize.Resize(MaxImageWidth, 0, img, resize.Lanczos3)

	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	defer f.Close()

	if format == "png" {
		err = png.Encode(f, resized)
	} else {
		err = jpeg.Encode(f, resized, &jpeg.Options{Quality: 85})
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}
	d.logger.Debug().Str("file", u.Filename).Int("width", img.Bounds().Dx()).Msg("image downscaled")
	return f.Close()
}

func writeFile(dst string, r io.Reader) error {
	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", dst, err)
	}
	return f.Close()
}

func (d *LocalDisk) Remove(localPath string) error {
	if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// PathFor maps a /uploads URL back to its file. URLs outside the upload
// directory are rejected.
func (d *LocalDisk) PathFor(url string) (string, bool) {
	if !strings.HasPrefix(url, URLPrefix) {
		return "", false
	}
	name := path.Base(strings.TrimPrefix(url, URLPrefix))
	if name == "." || name == "/" || name == ".." {
		return "", false
	}
	return filepath.Join(d.dir, name), true
}

// safeExt keeps a short alphanumeric extension of the client file name.
func safeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) < 2 || len(ext) > 6 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
