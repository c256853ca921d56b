package storage

import (
	"context"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// FileStorage defines the interface for object storage operations. Object
// keys are opaque strings; the publishing pipeline scopes them under the
// owner's identifier so uploads never collide across users.
type FileStorage interface {
	// PutObject writes the given bytes at objectKey, overwriting any
	// existing object.
	PutObject(ctx context.Context, objectKey string, data []byte, contentType string) error

	// DeleteObject removes an object from the storage provider. Deleting
	// a key that does not exist is not an error.
	DeleteObject(ctx context.Context, objectKey string) error

	// PublicURL returns the stable, unauthenticated URL for an object.
	PublicURL(objectKey string) string

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET
	// requests directly against the storage provider, so private assets
	// stay playable by their owner without proxying bytes.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)
}
