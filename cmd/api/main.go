//	@title			CloudPocket API
//	@version		1.0.0
//	@description	File-storage gateway: upload, list, download, and delete files kept in S3-compatible object storage.
//
//	@host		localhost:8000
//	@BasePath	/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Bearer token. Format: **Bearer {token}**

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/cloudpocket/gateway/internal/config"
	"github.com/cloudpocket/gateway/internal/file"
	"github.com/cloudpocket/gateway/internal/logger"
	appMiddleware "github.com/cloudpocket/gateway/internal/middleware"
	"github.com/cloudpocket/gateway/internal/registry"
	"github.com/cloudpocket/gateway/internal/server"
	"github.com/cloudpocket/gateway/internal/storage"
)

const (
	shutdownTimeout    = 30 * time.Second
	storageInitTimeout = 15 * time.Second
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	log := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		SentryDSN:   cfg.SentryDSN,
		Environment: cfg.AppEnv,
		Release:     file.Version,
	}, appMiddleware.RequestIDExtractor, appMiddleware.SubjectExtractor)
	slog.SetDefault(log)
	defer sentry.Flush(2 * time.Second)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := newStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("object storage init failed: %w", err)
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	observer, err := storage.NewPrometheusObserver("cloudpocket", promReg)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	keyFunc, err := file.KeyFuncFor(cfg.KeyStrategy)
	if err != nil {
		return err
	}

	// Wire dependencies: storage + registry → service → handler
	reg := registry.New()
	promReg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "cloudpocket",
		Name:      "registry_entries",
		Help:      "Number of files currently tracked by the registry.",
	}, func() float64 { return float64(reg.Count()) }))

	fileSvc := file.NewService(storage.Instrument(backend, observer), reg,
		file.WithKeyFunc(keyFunc),
		file.WithLogger(log),
	)
	fileHandler := file.NewHandler(fileSvc, cfg.MaxUploadBytes,
		file.WithKeyFormat(file.KeyFormat(cfg.KeyStrategy)),
	)

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: server.NewRouter(server.Options{
			Files:          fileHandler,
			Logger:         log,
			JWTSecret:      cfg.JWTSecret,
			Metrics:        promhttp.HandlerFor(promReg, promhttp.HandlerOpts{Registry: promReg}),
			DisableSwagger: cfg.IsProduction(),
		}),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening",
			slog.String("addr", srv.Addr),
			slog.String("env", cfg.AppEnv),
			slog.String("driver", cfg.StorageDriver),
			slog.String("bucket", cfg.Bucket),
			slog.Bool("admin", cfg.AdminEnabled()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("forced shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}

func newStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch cfg.StorageDriver {
	case config.DriverMinio:
		initCtx, cancel := context.WithTimeout(ctx, storageInitTimeout)
		defer cancel()
		return storage.NewMinioStorage(initCtx, storage.MinioConfig{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKeyID,
			SecretKey: cfg.SecretAccessKey,
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			UseSSL:    cfg.UseSSL,
		})
	default:
		s3Store, err := storage.NewS3Storage(storage.S3Config{
			Bucket:    cfg.Bucket,
			AccessKey: cfg.AccessKeyID,
			SecretKey: cfg.SecretAccessKey,
			Region:    cfg.Region,
			Endpoint:  cfg.Endpoint,
			PathStyle: cfg.PathStyle,
		})
		if err != nil {
			return nil, err
		}
		initCtx, cancel := context.WithTimeout(ctx, storageInitTimeout)
		defer cancel()
		if err := s3Store.CheckBucket(initCtx); err != nil {
			return nil, err
		}
		return s3Store, nil
	}
}
