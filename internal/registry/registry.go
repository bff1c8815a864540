// Package registry keeps the in-process index of uploaded files.
//
// The registry maps an object key to the file it was uploaded as. It is the
// only shared mutable state in the gateway: one Registry is constructed at
// startup and handed to the handlers that need it. Entries are lost on
// restart even though the underlying objects stay in the bucket.
package registry

import (
	"sort"
	"sync"
	"time"
)

// Entry describes one stored object.
type Entry struct {
	Filename   string    `json:"filename"`
	ObjectKey  string    `json:"s3_key"`
	UploadTime time.Time `json:"upload_time"`
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock overrides the time source used to stamp new entries.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// Registry is a mutex-guarded map of object key to Entry. The zero value is
// not usable; create one with New.
type Registry struct {
	mu      sync.Mutex
	entries map[string]Entry
	now     func() time.Time
}

// New creates an empty Registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		entries: make(map[string]Entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add records filename under objectKey, replacing any existing entry for the
// same key.
func (r *Registry) Add(filename, objectKey string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[objectKey] = Entry{
		Filename:   filename,
		ObjectKey:  objectKey,
		UploadTime: r.now(),
	}
}

// Get returns the entry stored under objectKey. The boolean is false when the
// key is unknown.
func (r *Registry) Get(objectKey string) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[objectKey]
	return e, ok
}

// Remove deletes the entry for objectKey and reports whether one existed.
func (r *Registry) Remove(objectKey string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[objectKey]; !ok {
		return false
	}
	delete(r.entries, objectKey)
	return true
}

// Filenames returns the filenames of all entries in no particular order.
func (r *Registry) Filenames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		names = append(names, e.Filename)
	}
	return names
}

// ObjectKeys returns the keys of all entries in no particular order.
func (r *Registry) ObjectKeys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	return keys
}

// Entries returns a copy of every entry, oldest upload first. Entries that
// share an upload time are ordered by key.
func (r *Registry) Entries() []Entry {
	r.mu.Lock()
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].UploadTime.Equal(out[j].UploadTime) {
			return out[i].ObjectKey < out[j].ObjectKey
		}
		return out[i].UploadTime.Before(out[j].UploadTime)
	})
	return out
}

// Count returns the number of entries.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.entries)
}

// Clear removes every entry.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.entries)
}
