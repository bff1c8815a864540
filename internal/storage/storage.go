// Package storage defines the interface for object storage operations.
// Swap implementations by changing the concrete type injected at startup:
// the S3 driver talks to AWS (or any endpoint speaking the S3 API through
// aws-sdk-go-v2), the MinIO driver works with any S3-compatible provider.
package storage

import (
	"context"
	"io"
	"time"
)

// Storage is the interface for storing and retrieving objects in a bucket.
type Storage interface {
	// Upload streams data to the store under the given key.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// Download opens the object at key. It returns ErrNotFound when the
	// object does not exist. The caller must close the reader.
	Download(ctx context.Context, key string) (io.ReadCloser, *ObjectInfo, error)
	// Delete removes an object identified by key.
	Delete(ctx context.Context, key string) error
	// List returns the objects whose keys start with prefix.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type,omitempty"`
	LastModified time.Time `json:"last_modified"`
}
