// Package storagetest provides an in-memory storage.Storage for tests.
package storagetest

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cloudpocket/gateway/internal/storage"
)

// Memory is a concurrency-safe in-memory bucket. Set the *Err fields to make
// the matching operation fail.
type Memory struct {
	mu      sync.Mutex
	objects map[string]object
	calls   map[string]int

	UploadErr   error
	DownloadErr error
	DeleteErr   error
	ListErr     error
}

type object struct {
	data        []byte
	contentType string
	modified    time.Time
}

// NewMemory returns an empty Memory.
func NewMemory() *Memory {
	return &Memory{
		objects: make(map[string]object),
		calls:   make(map[string]int),
	}
}

// Calls reports how many times op ("upload", "download", "delete", "list")
// was invoked.
func (m *Memory) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// Has reports whether key is stored.
func (m *Memory) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

// Put stores data under key without going through Upload.
func (m *Memory) Put(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = object{data: bytes.Clone(data), modified: time.Now()}
}

func (m *Memory) Upload(_ context.Context, key string, reader io.Reader, _ int64, contentType string) error {
	m.mu.Lock()
	m.calls["upload"]++
	failure := m.UploadErr
	m.mu.Unlock()
	if failure != nil {
		return failure
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = object{data: data, contentType: contentType, modified: time.Now()}
	return nil
}

func (m *Memory) Download(_ context.Context, key string) (io.ReadCloser, *storage.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["download"]++
	if m.DownloadErr != nil {
		return nil, nil, m.DownloadErr
	}

	obj, ok := m.objects[key]
	if !ok {
		return nil, nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(obj.data)), &storage.ObjectInfo{
		Key:          key,
		Size:         int64(len(obj.data)),
		ContentType:  obj.contentType,
		LastModified: obj.modified,
	}, nil
}

// Delete mirrors S3: removing a missing key succeeds.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["delete"]++
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.objects, key)
	return nil
}

func (m *Memory) List(_ context.Context, prefix string) ([]storage.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["list"]++
	if m.ListErr != nil {
		return nil, m.ListErr
	}

	out := make([]storage.ObjectInfo, 0, len(m.objects))
	for k, obj := range m.objects {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		out = append(out, storage.ObjectInfo{
			Key:          k,
			Size:         int64(len(obj.data)),
			ContentType:  obj.contentType,
			LastModified: obj.modified,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

var _ storage.Storage = (*Memory)(nil)
