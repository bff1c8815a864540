// Package server assembles the HTTP router.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/cloudpocket/gateway/internal/file"
	appMiddleware "github.com/cloudpocket/gateway/internal/middleware"

	_ "github.com/cloudpocket/gateway/docs/swagger"
)

// Options holds the router's dependencies.
type Options struct {
	Files  *file.Handler
	Logger *slog.Logger

	// JWTSecret mounts the /admin routes behind bearer auth when non-empty.
	JWTSecret string

	// Metrics is served at /metrics when non-nil.
	Metrics http.Handler

	// DisableSwagger drops the /swagger UI. Production deployments set it.
	DisableSwagger bool
}

// NewRouter builds the chi router serving the gateway API.
func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger(log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	// Swagger UI at /swagger/
	if !opts.DisableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	h := opts.Files
	r.Get("/", h.Info)
	r.Post("/upload/", h.Upload)
	r.Get("/download/{key}", h.Download)
	r.Get("/files/", h.List)
	r.Delete("/delete/{key}", h.Delete)

	if opts.JWTSecret != "" {
		r.Route("/admin", func(r chi.Router) {
			r.Use(appMiddleware.RequireAuth(opts.JWTSecret))
			r.Get("/registry", h.Registry)
			r.Delete("/registry", h.ClearRegistry)
			r.Get("/objects", h.Objects)
		})
	}

	return r
}
