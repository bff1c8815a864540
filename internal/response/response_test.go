package response

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHelpers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		write  func(http.ResponseWriter)
		status int
		body   string
	}{
		{"ok slice", func(w http.ResponseWriter) { OK(w, []string{"a.txt"}) }, http.StatusOK, `["a.txt"]`},
		{"message", func(w http.ResponseWriter) { Message(w, "done") }, http.StatusOK, `{"message":"done"}`},
		{"bad request", func(w http.ResponseWriter) { BadRequest(w, "no file") }, http.StatusBadRequest, `{"detail":"no file"}`},
		{"unauthorized", func(w http.ResponseWriter) { Unauthorized(w, "nope") }, http.StatusUnauthorized, `{"detail":"nope"}`},
		{"not found", func(w http.ResponseWriter) { NotFound(w, "File not found") }, http.StatusNotFound, `{"detail":"File not found"}`},
		{"too large", func(w http.ResponseWriter) { TooLarge(w, "big") }, http.StatusRequestEntityTooLarge, `{"detail":"big"}`},
		{"internal", func(w http.ResponseWriter) { InternalError(w, "boom") }, http.StatusInternalServerError, `{"detail":"boom"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			tt.write(rec)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}
}
