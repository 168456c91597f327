package storage

import (
	"context"
	"errors"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// MaxObjectSize bounds how much of an uploaded object is read back.
const MaxObjectSize = 32 << 20

var (
	ErrObjectNotFound = errors.New("object not found in storage")
	ErrObjectTooLarge = errors.New("object exceeds size limit")
)

// FileStorage defines the object storage operations used for FIT imports.
type FileStorage interface {
	// GeneratePresignedUploadURL creates a temporary URL that allows PUT requests
	// for uploading an object directly to the storage provider.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)

	// GetObject reads a whole object, up to MaxObjectSize bytes.
	GetObject(ctx context.Context, objectKey string) ([]byte, error)

	// DeleteObject removes an object from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error
}

// ObjectWriter is implemented by backends without presigned URLs. Uploads
// for them go through the API, which calls PutObject.
type ObjectWriter interface {
	PutObject(ctx context.Context, objectKey string, data []byte) error
}
