package storage

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/minio/minio-go/v7"
)

// Sentinel errors for storage operations.
var (
	ErrInvalidConfig = errors.New("storage: invalid configuration")

	// ErrNotFound is the absent signal: the key does not exist in the bucket.
	ErrNotFound = errors.New("storage: object not found")

	// ErrCredentialsMissing is returned when the backend rejects or cannot
	// build credentials.
	ErrCredentialsMissing = errors.New("storage: credentials missing or rejected")

	ErrUploadFailed   = errors.New("storage: upload failed")
	ErrDownloadFailed = errors.New("storage: download failed")
	ErrDeleteFailed   = errors.New("storage: delete failed")
	ErrListFailed     = errors.New("storage: list failed")
)

// classifyCode maps an S3 error code to a sentinel. It returns nil for codes
// that carry no special meaning.
func classifyCode(code string) error {
	switch code {
	case "NoSuchKey", "NotFound":
		return ErrNotFound
	case "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken",
		"InvalidToken", "MissingSecurityHeader", "AuthorizationHeaderMalformed",
		"Forbidden":
		return ErrCredentialsMissing
	}
	return nil
}

// wrapS3Error wraps aws-sdk-go-v2 errors with the matching sentinel, or with
// fallback when nothing more specific applies. The original error is kept as
// text (%v) so callers match on sentinels with errors.Is, not on SDK types.
func wrapS3Error(err error, fallback error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if sentinel := classifyCode(apiErr.ErrorCode()); sentinel != nil {
			return fmt.Errorf("%w: %v", sentinel, err)
		}
	}

	var notFound *types.NoSuchKey
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	return fmt.Errorf("%w: %v", fallback, err)
}

// wrapMinioError does the same for minio-go errors.
func wrapMinioError(err error, fallback error) error {
	resp := minio.ToErrorResponse(err)
	if sentinel := classifyCode(resp.Code); sentinel != nil {
		return fmt.Errorf("%w: %v", sentinel, err)
	}
	return fmt.Errorf("%w: %v", fallback, err)
}
