package storage

import (
	"context"
	"io"
	"time"
)

// BlobStore is the object-storage capability the onboarding engine consumes.
// Keys are opaque; the engine never parses them. Implementations must make
// Delete idempotent: deleting a missing key is not an error.
type BlobStore interface {
	// Put stores the object and returns its permanent (proxy) URL.
	Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	// Delete removes the object.
	Delete(ctx context.Context, key string) error
	// SignURL returns a time-limited read URL for the object.
	SignURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	// ProxyURL returns the stable, non-expiring URL for the object.
	ProxyURL(key string) string
}
