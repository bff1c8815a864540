package file

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudpocket/gateway/internal/registry"
	"github.com/cloudpocket/gateway/internal/storage/storagetest"
)

func withKeyParam(r *http.Request, raw string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("key", raw)
	r.URL.RawPath = "/k/" + raw
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestKeyParam(t *testing.T) {
	t.Parallel()

	t.Run("decoded path is used as is", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodGet, "/download/1_100%25.txt", nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("key", "1_100%.txt")
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))

		key, err := keyParam(r)
		require.NoError(t, err)
		assert.Equal(t, "1_100%.txt", key)
	})

	t.Run("raw path is unescaped", func(t *testing.T) {
		t.Parallel()
		r := withKeyParam(httptest.NewRequest(http.MethodGet, "/download/k", nil), "1_a%2Cb.txt")

		key, err := keyParam(r)
		require.NoError(t, err)
		assert.Equal(t, "1_a,b.txt", key)
	})
}

func TestHandler_MalformedKeyEscaping(t *testing.T) {
	t.Parallel()

	store := storagetest.NewMemory()
	h := NewHandler(NewService(store, registry.New()), 1024)

	for _, tc := range []struct {
		method  string
		handler http.HandlerFunc
	}{
		{http.MethodGet, h.Download},
		{http.MethodDelete, h.Delete},
	} {
		r := withKeyParam(httptest.NewRequest(tc.method, "/k", nil), "bad%zz")
		rec := httptest.NewRecorder()
		tc.handler(rec, r)
		assert.Equal(t, http.StatusBadRequest, rec.Code, tc.method)
	}
	assert.Zero(t, store.Calls("download"))
	assert.Zero(t, store.Calls("delete"))
}
