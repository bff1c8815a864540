package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// DefaultRegion is used when S3Config.Region is empty.
const DefaultRegion = "us-east-1"

// S3Config holds AWS S3 storage configuration.
type S3Config struct {
	Bucket    string
	AccessKey string
	SecretKey string
	Region    string

	// Endpoint is an optional custom endpoint URL for S3-compatible services.
	Endpoint string

	// PathStyle enables path-style URLs (required for MinIO behind the S3 driver).
	PathStyle bool
}

func (c *S3Config) applyDefaults() {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
}

func (c *S3Config) validate() error {
	if c.Bucket == "" {
		return ErrInvalidConfig
	}
	if c.AccessKey == "" || c.SecretKey == "" {
		return ErrCredentialsMissing
	}
	return nil
}

// S3Storage implements Storage using aws-sdk-go-v2.
type S3Storage struct {
	client *s3.Client
	cfg    S3Config
}

// NewS3Storage creates a new S3Storage with the given configuration.
func NewS3Storage(cfg S3Config) (*S3Storage, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	opts := []func(*s3.Options){
		func(o *s3.Options) {
			o.Region = cfg.Region
			o.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
		},
	}
	if cfg.Endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.PathStyle
		})
	}

	return &S3Storage{
		client: s3.New(s3.Options{}, opts...),
		cfg:    cfg,
	}, nil
}

// CheckBucket issues HeadBucket so missing buckets and rejected credentials
// surface at startup rather than on the first request.
func (s *S3Storage) CheckBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.cfg.Bucket)})
	if err != nil {
		return fmt.Errorf("head bucket %q: %w", s.cfg.Bucket, wrapS3Error(err, ErrInvalidConfig))
	}
	return nil
}

// Upload puts the object. The body must be seekable for request signing, so
// callers pass the in-memory upload as a bytes.Reader.
func (s *S3Storage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
		Body:   reader,
	}
	if size >= 0 {
		input.ContentLength = aws.Int64(size)
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("put object %q: %w", key, wrapS3Error(err, ErrUploadFailed))
	}
	return nil
}

// Download retrieves an object from S3.
func (s *S3Storage) Download(ctx context.Context, key string) (io.ReadCloser, *ObjectInfo, error) {
	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("get object %q: %w", key, wrapS3Error(err, ErrDownloadFailed))
	}

	info := &ObjectInfo{
		Key:          key,
		Size:         aws.ToInt64(output.ContentLength),
		ContentType:  aws.ToString(output.ContentType),
		LastModified: aws.ToTime(output.LastModified),
	}
	if output.ContentLength == nil {
		info.Size = -1
	}
	return output.Body, info, nil
}

// Delete removes an object from S3. S3 reports success for keys that do not
// exist.
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %q: %w", key, wrapS3Error(err, ErrDeleteFailed))
	}
	return nil
}

// List pages through ListObjectsV2 and returns every object under prefix.
func (s *S3Storage) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.cfg.Bucket),
		Prefix: aws.String(prefix),
	})

	objects := make([]ObjectInfo, 0)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list objects %q: %w", prefix, wrapS3Error(err, ErrListFailed))
		}
		for _, obj := range page.Contents {
			objects = append(objects, ObjectInfo{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}
	return objects, nil
}

// Ensure S3Storage implements Storage.
var _ Storage = (*S3Storage)(nil)
