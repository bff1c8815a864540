package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudpocket/gateway/internal/middleware"
)

func TestIssueToken_AcceptedByRequireAuth(t *testing.T) {
	t.Parallel()

	token, err := issueToken("secret", "ops", time.Hour, time.Now())
	require.NoError(t, err)

	var got string
	h := middleware.RequireAuth("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = r.Context().Value(middleware.SubjectKey).(string)
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin/registry", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ops", got)
}

func TestIssueToken_Expired(t *testing.T) {
	t.Parallel()

	token, err := issueToken("secret", "ops", time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	h := middleware.RequireAuth("secret")(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/admin/registry", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIssueToken_Validation(t *testing.T) {
	t.Parallel()

	_, err := issueToken("", "ops", time.Hour, time.Now())
	require.Error(t, err)
	_, err = issueToken("secret", "", time.Hour, time.Now())
	require.Error(t, err)
	_, err = issueToken("secret", "ops", 0, time.Now())
	require.Error(t, err)
}
