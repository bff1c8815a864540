// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers.
const (
	DriverS3    = "s3"
	DriverMinio = "minio"
)

// Key strategies.
const (
	KeyStrategyUUID      = "uuid"
	KeyStrategyTimestamp = "timestamp"
)

var (
	// ErrCredentialsMissing is returned by Validate when the backend access
	// key or secret is not set.
	ErrCredentialsMissing = errors.New("config: AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY are required")

	// ErrBucketMissing is returned by Validate when S3_BUCKET is not set.
	ErrBucketMissing = errors.New("config: S3_BUCKET is required")
)

// Config holds all runtime configuration for the service.
type Config struct {
	Port   string
	AppEnv string

	// Object storage
	StorageDriver   string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
	Endpoint        string // custom S3 endpoint; host[:port] for the minio driver
	UseSSL          bool
	PathStyle       bool

	KeyStrategy    string
	MaxUploadBytes int64

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// JWTSecret enables the admin routes when non-empty.
	JWTSecret string

	SentryDSN string
	LogLevel  slog.Level
}

// Load reads configuration from a .env file (if present) and environment variables.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, reading from environment")
	}

	return &Config{
		Port:   getEnv("PORT", "8000"),
		AppEnv: getEnv("APP_ENV", "development"),

		StorageDriver:   strings.ToLower(getEnv("STORAGE_DRIVER", DriverS3)),
		AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		Region:          getEnv("AWS_REGION", "us-east-1"),
		Bucket:          os.Getenv("S3_BUCKET"),
		Endpoint:        os.Getenv("S3_ENDPOINT"),
		UseSSL:          getEnvBool("S3_USE_SSL", true),
		PathStyle:       getEnvBool("S3_PATH_STYLE", false),

		KeyStrategy:    strings.ToLower(getEnv("KEY_STRATEGY", KeyStrategyUUID)),
		MaxUploadBytes: getEnvInt64("MAX_UPLOAD_BYTES", 50<<20),

		ReadTimeout:  getEnvDuration("HTTP_READ_TIMEOUT", 60*time.Second),
		WriteTimeout: getEnvDuration("HTTP_WRITE_TIMEOUT", 60*time.Second),
		IdleTimeout:  getEnvDuration("HTTP_IDLE_TIMEOUT", 120*time.Second),

		JWTSecret: os.Getenv("JWT_SECRET"),
		SentryDSN: os.Getenv("SENTRY_DSN"),
		LogLevel:  parseLevel(getEnv("LOG_LEVEL", "info")),
	}
}

// Validate checks that the service can talk to its backend. It is called once
// at startup so that missing settings stop the process instead of failing the
// first request.
func (c *Config) Validate() error {
	if c.AccessKeyID == "" || c.SecretAccessKey == "" {
		return ErrCredentialsMissing
	}
	if c.Bucket == "" {
		return ErrBucketMissing
	}

	switch c.StorageDriver {
	case DriverS3:
	case DriverMinio:
		if c.Endpoint == "" {
			return errors.New("config: S3_ENDPOINT is required for the minio driver")
		}
	default:
		return fmt.Errorf("config: unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	switch c.KeyStrategy {
	case KeyStrategyUUID, KeyStrategyTimestamp:
	default:
		return fmt.Errorf("config: unknown KEY_STRATEGY %q", c.KeyStrategy)
	}

	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("config: MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	return nil
}

// IsProduction returns true when the app is running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// AdminEnabled reports whether the admin routes should be mounted.
func (c *Config) AdminEnabled() bool {
	return c.JWTSecret != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvInt64(key string, fallback int64) int64 {
	v, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
