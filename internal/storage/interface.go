package storage

import (
	"context"
	"io"
)

// ObjectStorage hosts generated images so their URLs can be embedded in a site prompt.
type ObjectStorage interface {
	// Upload uploads an object to storage
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// GetURL returns the public URL for accessing an object
	GetURL(key string) string

	// EnsureBucket checks the bucket is reachable, creating it where the provider allows
	EnsureBucket(ctx context.Context) error
}
