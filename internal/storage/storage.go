// Package storage saves uploaded media and builds public URLs for it.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"quill/internal/config"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // register WebP decoder
)

// Directories used for stored keys.
const (
	DirPreviews = "posts/previews"
	DirImages   = "posts/images"
)

// MaxImagePixels bounds width*height of accepted uploads.
const MaxImagePixels = 40_000_000

// ErrInvalidImage is returned when an upload is not a supported image.
var ErrInvalidImage = errors.New("invalid image file")

// Backend persists binary objects under keys.
type Backend interface {
	Put(ctx context.Context, key string, content []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

var formatExt = map[string]string{
	"jpeg": ".jpg",
	"png":  ".png",
	"gif":  ".gif",
	"webp": ".webp",
}

// Inspect checks that content decodes as a supported image and returns
// its canonical extension and MIME type.
func Inspect(content []byte) (ext, contentType string, err error) {
	if len(content) == 0 {
		return "", "", ErrInvalidImage
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	ext, ok := formatExt[format]
	if !ok {
		return "", "", fmt.Errorf("%w: unsupported format %q", ErrInvalidImage, format)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > MaxImagePixels {
		return "", "", fmt.Errorf("%w: bad dimensions %dx%d", ErrInvalidImage, cfg.Width, cfg.Height)
	}
	contentType = http.DetectContentType(content)
	if !strings.HasPrefix(contentType, "image/") {
		contentType = "image/" + format
	}
	return ext, contentType, nil
}

// NewKey returns a unique key under dir with the given extension.
func NewKey(dir, ext string) string {
	return path.Join(dir, uuid.NewString()+ext)
}

// SaveImage validates content and stores it under dir, returning the key.
func SaveImage(ctx context.Context, b Backend, dir string, content []byte) (string, error) {
	ext, contentType, err := Inspect(content)
	if err != nil {
		return "", err
	}
	key := NewKey(dir, ext)
	if err := b.Put(ctx, key, content, contentType); err != nil {
		return "", fmt.Errorf("store %s: %w", key, err)
	}
	return key, nil
}

// ReadFileHeader reads a multipart file into memory, enforcing maxBytes.
func ReadFileHeader(fh *multipart.FileHeader, maxBytes int64) ([]byte, error) {
	if fh.Size > maxBytes {
		return nil, fmt.Errorf("file %q too large (max %dMB)", fh.Filename, maxBytes/(1024*1024))
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(content)) > maxBytes {
		return nil, fmt.Errorf("file %q too large (max %dMB)", fh.Filename, maxBytes/(1024*1024))
	}
	return content, nil
}

// New builds the backend selected by cfg.StorageDriver.
func New(cfg *config.Config) (Backend, error) {
	switch cfg.StorageDriver {
	case config.StorageS3:
		return NewS3Backend(S3Options{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Endpoint: cfg.S3Endpoint,
			BaseURL:  cfg.MediaBaseURL,
		})
	case config.StorageLocal, "":
		return NewLocalBackend(cfg.MediaRoot, cfg.MediaBaseURL)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
