// Package file implements the upload, download, list, and delete operations of
// the gateway on top of object storage and the in-process registry.
package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cloudpocket/gateway/internal/registry"
	"github.com/cloudpocket/gateway/internal/storage"
)

// ErrNotFound is returned when a key is unknown to the registry (delete) or
// to the backend (download).
var ErrNotFound = errors.New("file not found")

// ErrInvalidFilename is returned when an upload has no usable filename.
var ErrInvalidFilename = errors.New("invalid filename")

// Option configures a Service.
type Option func(*Service)

// WithKeyFunc sets how object keys are derived. Defaults to UUIDKey.
func WithKeyFunc(fn KeyFunc) Option {
	return func(s *Service) {
		if fn != nil {
			s.keyFunc = fn
		}
	}
}

// WithClock sets the time source passed to the KeyFunc.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// Service composes the blob store and the registry. It holds no state of its
// own.
type Service struct {
	store    storage.Storage
	registry *registry.Registry
	keyFunc  KeyFunc
	now      func() time.Time
	log      *slog.Logger
}

// NewService creates a new file Service.
func NewService(store storage.Storage, reg *registry.Registry, opts ...Option) *Service {
	s := &Service{
		store:    store,
		registry: reg,
		keyFunc:  UUIDKey,
		now:      time.Now,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload stores data under a freshly derived key and records it in the
// registry. The registry is only written after the backend accepted the
// object, so a failed put leaves no entry behind.
func (s *Service) Upload(ctx context.Context, filename string, data []byte, contentType string) (string, error) {
	if filename == "" {
		return "", ErrInvalidFilename
	}

	key := s.keyFunc(filename, s.now())
	if err := s.store.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		s.log.ErrorContext(ctx, "upload failed",
			slog.String("key", key),
			slog.String("filename", filename),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("upload %q: %w", filename, err)
	}

	s.registry.Add(filename, key)
	s.log.InfoContext(ctx, "file uploaded",
		slog.String("key", key),
		slog.String("filename", filename),
		slog.Int("size", len(data)),
	)
	return key, nil
}

// Download opens the object at key straight from the backend. The registry is
// not consulted: it is an index of uploads made by this process, not a gate.
func (s *Service) Download(ctx context.Context, key string) (io.ReadCloser, *storage.ObjectInfo, error) {
	rc, info, err := s.store.Download(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		s.log.ErrorContext(ctx, "download failed", slog.String("key", key), slog.String("error", err.Error()))
		return nil, nil, fmt.Errorf("download %q: %w", key, err)
	}
	return rc, info, nil
}

// List returns the filenames of every registered upload.
func (s *Service) List() []string {
	return s.registry.Filenames()
}

// Delete removes a registered object from the backend and then from the
// registry. Keys the registry does not know are rejected without contacting
// the backend. If the backend delete fails the entry is kept.
//
// Lookup and removal are separate critical sections. Two concurrent deletes
// of the same key may both reach the backend; that is harmless because
// deleting a missing object succeeds on S3-compatible stores, and the loser
// simply finds nothing left to remove.
func (s *Service) Delete(ctx context.Context, key string) error {
	if _, ok := s.registry.Get(key); !ok {
		return ErrNotFound
	}

	if err := s.store.Delete(ctx, key); err != nil {
		s.log.ErrorContext(ctx, "delete failed", slog.String("key", key), slog.String("error", err.Error()))
		return fmt.Errorf("delete %q: %w", key, err)
	}

	if !s.registry.Remove(key) {
		s.log.DebugContext(ctx, "entry already removed by a concurrent delete", slog.String("key", key))
	}
	s.log.InfoContext(ctx, "file deleted", slog.String("key", key))
	return nil
}

// Entries returns every registry entry, oldest first.
func (s *Service) Entries() []registry.Entry {
	return s.registry.Entries()
}

// ClearRegistry forgets every registered upload. Objects stay in the bucket.
func (s *Service) ClearRegistry(ctx context.Context) {
	s.registry.Clear()
	s.log.WarnContext(ctx, "registry cleared")
}

// ListObjects lists the objects in the bucket under prefix, registered or not.
func (s *Service) ListObjects(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	objects, err := s.store.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}
	return objects, nil
}

// IsNotFound returns true when the error indicates a file was not found.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
