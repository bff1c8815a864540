package file_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudpocket/gateway/internal/file"
	"github.com/cloudpocket/gateway/internal/registry"
	"github.com/cloudpocket/gateway/internal/storage"
	"github.com/cloudpocket/gateway/internal/storage/storagetest"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newService(t *testing.T, opts ...file.Option) (*file.Service, *storagetest.Memory, *registry.Registry) {
	t.Helper()
	store := storagetest.NewMemory()
	reg := registry.New()
	opts = append([]file.Option{file.WithLogger(discard)}, opts...)
	return file.NewService(store, reg, opts...), store, reg
}

func readAll(t *testing.T, rc io.ReadCloser) []byte {
	t.Helper()
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return data
}

func TestService_UploadDownloadRoundTrip(t *testing.T) {
	t.Parallel()

	svc, _, reg := newService(t)
	ctx := context.Background()

	payloads := map[string][]byte{
		"a.txt":     []byte("hello"),
		"empty.bin": {},
		"binary":    {0x00, 0xff, 0x10, 0x00},
	}
	for name, data := range payloads {
		key, err := svc.Upload(ctx, name, data, "application/octet-stream")
		require.NoError(t, err)

		rc, info, err := svc.Download(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, data, readAll(t, rc))
		assert.Equal(t, int64(len(data)), info.Size)

		e, ok := reg.Get(key)
		require.True(t, ok)
		assert.Equal(t, name, e.Filename)
	}
	assert.Equal(t, len(payloads), reg.Count())
}

func TestService_UploadScenarioWithTimestampKeys(t *testing.T) {
	t.Parallel()

	T := time.Unix(1717171717, 0)
	svc, store, _ := newService(t,
		file.WithKeyFunc(file.TimestampKey),
		file.WithClock(func() time.Time { return T }),
	)
	ctx := context.Background()

	key, err := svc.Upload(ctx, "a.txt", []byte("hello"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "1717171717_a.txt", key)
	assert.Contains(t, svc.List(), "a.txt")

	rc, _, err := svc.Download(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), readAll(t, rc))

	require.NoError(t, svc.Delete(ctx, key))
	assert.False(t, store.Has(key))

	_, _, err = svc.Download(ctx, key)
	require.ErrorIs(t, err, file.ErrNotFound)
	assert.NotContains(t, svc.List(), "a.txt")
}

func TestService_UploadBackendFailureLeavesNoEntry(t *testing.T) {
	t.Parallel()

	svc, store, reg := newService(t)
	store.UploadErr = fmt.Errorf("put object: %w", storage.ErrUploadFailed)

	key, err := svc.Upload(context.Background(), "a.txt", []byte("hello"), "")
	require.ErrorIs(t, err, storage.ErrUploadFailed)
	assert.Empty(t, key)
	assert.Equal(t, 0, reg.Count())
	assert.Empty(t, svc.List())
}

func TestService_UploadRejectsEmptyFilename(t *testing.T) {
	t.Parallel()

	svc, store, _ := newService(t)

	_, err := svc.Upload(context.Background(), "", []byte("x"), "")
	require.ErrorIs(t, err, file.ErrInvalidFilename)
	assert.Zero(t, store.Calls("upload"))
}

func TestService_DownloadBypassesRegistry(t *testing.T) {
	t.Parallel()

	svc, store, reg := newService(t)
	store.Put("uploaded-elsewhere", []byte("data"))

	rc, _, err := svc.Download(context.Background(), "uploaded-elsewhere")
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), readAll(t, rc))
	assert.Equal(t, 0, reg.Count())
}

func TestService_DownloadErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing key", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newService(t)
		_, _, err := svc.Download(context.Background(), "nope")
		require.ErrorIs(t, err, file.ErrNotFound)
		assert.True(t, svc.IsNotFound(err))
	})

	t.Run("backend failure", func(t *testing.T) {
		t.Parallel()
		svc, store, _ := newService(t)
		store.DownloadErr = fmt.Errorf("get object: %w", storage.ErrCredentialsMissing)

		_, _, err := svc.Download(context.Background(), "k")
		require.ErrorIs(t, err, storage.ErrCredentialsMissing)
		assert.False(t, svc.IsNotFound(err))
	})
}

func TestService_Delete(t *testing.T) {
	t.Parallel()

	t.Run("unknown key does not contact backend", func(t *testing.T) {
		t.Parallel()
		svc, store, _ := newService(t)

		err := svc.Delete(context.Background(), "never-uploaded")
		require.ErrorIs(t, err, file.ErrNotFound)
		assert.Zero(t, store.Calls("delete"))
	})

	t.Run("backend failure keeps entry", func(t *testing.T) {
		t.Parallel()
		svc, store, reg := newService(t)
		key, err := svc.Upload(context.Background(), "a.txt", []byte("x"), "")
		require.NoError(t, err)

		store.DeleteErr = errors.New("network unreachable")
		err = svc.Delete(context.Background(), key)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "network unreachable")

		_, ok := reg.Get(key)
		assert.True(t, ok)
		assert.True(t, store.Has(key))
	})

	t.Run("success removes object and entry", func(t *testing.T) {
		t.Parallel()
		svc, store, reg := newService(t)
		key, err := svc.Upload(context.Background(), "a.txt", []byte("x"), "")
		require.NoError(t, err)

		require.NoError(t, svc.Delete(context.Background(), key))
		_, ok := reg.Get(key)
		assert.False(t, ok)
		assert.False(t, store.Has(key))

		require.ErrorIs(t, svc.Delete(context.Background(), key), file.ErrNotFound)
	})
}

func TestService_ConcurrentDeletesOfSameKey(t *testing.T) {
	t.Parallel()

	svc, _, reg := newService(t)
	key, err := svc.Upload(context.Background(), "a.txt", []byte("x"), "")
	require.NoError(t, err)

	const n = 20
	errs := make([]error, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := range n {
		go func() {
			defer wg.Done()
			errs[i] = svc.Delete(context.Background(), key)
		}()
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		require.ErrorIs(t, err, file.ErrNotFound)
	}
	assert.GreaterOrEqual(t, successes, 1)
	assert.Equal(t, 0, reg.Count())
}

func TestService_ConcurrentUploads(t *testing.T) {
	t.Parallel()

	svc, _, reg := newService(t)

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := range n {
		go func() {
			defer wg.Done()
			_, err := svc.Upload(context.Background(), "same.txt", []byte(fmt.Sprint(i)), "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, n, reg.Count(), "uuid keys never collide")
	assert.Len(t, svc.List(), n)
}

func TestService_AdminOperations(t *testing.T) {
	t.Parallel()

	svc, store, _ := newService(t)
	ctx := context.Background()

	for _, name := range []string{"a.txt", "b.txt"} {
		_, err := svc.Upload(ctx, name, []byte(name), "")
		require.NoError(t, err)
	}
	store.Put("orphan", []byte("left over from a previous run"))

	assert.Len(t, svc.Entries(), 2)

	objects, err := svc.ListObjects(ctx, "")
	require.NoError(t, err)
	assert.Len(t, objects, 3)

	objects, err = svc.ListObjects(ctx, "orph")
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, "orphan", objects[0].Key)

	svc.ClearRegistry(ctx)
	assert.Empty(t, svc.Entries())
	assert.Empty(t, svc.List())

	objects, err = svc.ListObjects(ctx, "")
	require.NoError(t, err)
	assert.Len(t, objects, 3, "clearing the registry leaves objects in the bucket")

	store.ListErr = errors.New("timeout")
	_, err = svc.ListObjects(ctx, "")
	require.Error(t, err)
}
