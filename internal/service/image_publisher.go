package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path"

	"github.com/timmy/sitegen/internal/storage"
	_ "golang.org/x/image/webp"
)

// ErrNoImageStorage is returned when inline image data arrives but no bucket is configured.
var ErrNoImageStorage = errors.New("image returned as inline data but no image storage is configured")

// ImagePublisher turns a generated image into a public URL that can be embedded in a site.
type ImagePublisher struct {
	storage storage.ObjectStorage
	prefix  string
}

// NewImagePublisher creates a publisher.
// Parameters:
//   - objectStorage: bucket used for inline image data; nil allows URL results only.
//   - prefix: key prefix for uploaded objects.
//
// Returns:
//   - *ImagePublisher: initialized publisher.
func NewImagePublisher(objectStorage storage.ObjectStorage, prefix string) *ImagePublisher {
	return &ImagePublisher{storage: objectStorage, prefix: prefix}
}

// Publish returns a URL for img, uploading inline data when necessary.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - jobID: owning job, used in the object key.
//   - name: image role (hero, contact).
//   - img: generator output.
//
// Returns:
//   - string: public image URL.
//   - error: non-nil if the image is unusable or the upload fails.
func (p *ImagePublisher) Publish(ctx context.Context, jobID, name string, img *GeneratedImage) (string, error) {
	if img == nil {
		return "", ErrNoUsableImage
	}
	if img.URL != "" {
		return img.URL, nil
	}
	if len(img.Data) == 0 {
		return "", ErrNoUsableImage
	}

	// DecodeConfig only reads the header, enough to reject garbage and learn the format
	cfg, format, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoUsableImage, err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return "", fmt.Errorf("%w: empty %s image", ErrNoUsableImage, format)
	}

	if p.storage == nil {
		return "", ErrNoImageStorage
	}

	ext := format
	if ext == "jpeg" {
		ext = "jpg"
	}
	key := path.Join(p.prefix, jobID, name+"."+ext)

	if err := p.storage.Upload(ctx, key, bytes.NewReader(img.Data), int64(len(img.Data)), "image/"+format); err != nil {
		return "", fmt.Errorf("failed to store %s image: %w", name, err)
	}
	return p.storage.GetURL(key), nil
}
