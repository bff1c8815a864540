package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors(t *testing.T) {
	t.Parallel()

	sentinels := []error{
		ErrInvalidConfig,
		ErrNotFound,
		ErrCredentialsMissing,
		ErrUploadFailed,
		ErrDownloadFailed,
		ErrDeleteFailed,
		ErrListFailed,
	}

	seen := make(map[string]bool)
	for _, err := range sentinels {
		msg := err.Error()
		require.False(t, seen[msg], "duplicate error message: %s", msg)
		seen[msg] = true
	}
}

// mockAPIError implements smithy.APIError for testing.
type mockAPIError struct {
	code    string
	message string
}

func (e *mockAPIError) ErrorCode() string             { return e.code }
func (e *mockAPIError) ErrorMessage() string          { return e.message }
func (e *mockAPIError) ErrorFault() smithy.ErrorFault { return smithy.FaultUnknown }
func (e *mockAPIError) Error() string                 { return fmt.Sprintf("%s: %s", e.code, e.message) }

func TestWrapS3Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		fallback error
		want     error
	}{
		{"NoSuchKey code", &mockAPIError{code: "NoSuchKey"}, ErrDownloadFailed, ErrNotFound},
		{"NotFound code", &mockAPIError{code: "NotFound"}, ErrDownloadFailed, ErrNotFound},
		{"NoSuchKey typed", &types.NoSuchKey{}, ErrDownloadFailed, ErrNotFound},
		{"invalid access key", &mockAPIError{code: "InvalidAccessKeyId"}, ErrUploadFailed, ErrCredentialsMissing},
		{"bad signature", &mockAPIError{code: "SignatureDoesNotMatch"}, ErrDeleteFailed, ErrCredentialsMissing},
		{"expired token", &mockAPIError{code: "ExpiredToken"}, ErrListFailed, ErrCredentialsMissing},
		{"forbidden head", &mockAPIError{code: "Forbidden"}, ErrInvalidConfig, ErrCredentialsMissing},
		{"unknown code", &mockAPIError{code: "SlowDown"}, ErrDeleteFailed, ErrDeleteFailed},
		{"plain error", errors.New("connection reset"), ErrUploadFailed, ErrUploadFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			wrapped := wrapS3Error(tt.err, tt.fallback)
			require.ErrorIs(t, wrapped, tt.want)
			require.Contains(t, wrapped.Error(), tt.err.Error())
		})
	}
}

func TestWrapMinioError(t *testing.T) {
	t.Parallel()

	t.Run("NoSuchKey", func(t *testing.T) {
		t.Parallel()
		err := minio.ErrorResponse{Code: "NoSuchKey", Message: "The specified key does not exist."}
		require.ErrorIs(t, wrapMinioError(err, ErrDownloadFailed), ErrNotFound)
	})

	t.Run("invalid access key", func(t *testing.T) {
		t.Parallel()
		err := minio.ErrorResponse{Code: "InvalidAccessKeyId", Message: "bad key"}
		require.ErrorIs(t, wrapMinioError(err, ErrUploadFailed), ErrCredentialsMissing)
	})

	t.Run("fallback", func(t *testing.T) {
		t.Parallel()
		err := errors.New("dial tcp: connection refused")
		wrapped := wrapMinioError(err, ErrDeleteFailed)
		require.ErrorIs(t, wrapped, ErrDeleteFailed)
		require.Contains(t, wrapped.Error(), "connection refused")
	})
}
