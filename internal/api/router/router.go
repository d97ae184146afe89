package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/veilbox/veil/internal/api/handlers"
	"github.com/veilbox/veil/internal/api/middleware"
	"github.com/veilbox/veil/internal/reachability"
	"github.com/veilbox/veil/internal/sanitize"
)

// Config defines the strict dependencies required to build the routing tree.
// VaultHandler may be nil; the vault routes are only mounted when a database
// is configured.
type Config struct {
	AllowedOrigins []string
	Logger         *slog.Logger
	Sanitizer      *sanitize.Sanitizer
	Checker        *reachability.Checker

	CodecHandler        *handlers.CodecHandler
	ReachabilityHandler *handlers.ReachabilityHandler
	HealthHandler       *handlers.HealthHandler
	VaultHandler        *handlers.VaultHandler
	TokenAuth           *middleware.TokenAuth
}

// New constructs the chi multiplexer, attaches the global middleware
// pipeline, and wires all endpoints.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// ------------------------------------------------------------------
	// Global middleware pipeline
	// ------------------------------------------------------------------
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.StructuredLogger(cfg.Logger, cfg.Sanitizer))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// Incoming JSON capped at 1 MiB.
	r.Use(middleware.MaxBytes(1 << 20))

	limiter := middleware.NewRateLimiter()
	r.Use(limiter.Limit)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// ------------------------------------------------------------------
	// API v1 routing tree
	// ------------------------------------------------------------------
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cfg.TokenAuth.RequireToken)

		r.Route("/codec", func(r chi.Router) {
			r.Post("/encrypt", cfg.CodecHandler.Encrypt)
			r.Post("/decrypt", cfg.CodecHandler.Decrypt)
			r.Post("/encrypt-tree", cfg.CodecHandler.EncryptTree)
			r.Post("/decrypt-tree", cfg.CodecHandler.DecryptTree)
		})

		r.Post("/sanitize", cfg.CodecHandler.Sanitize)

		r.Route("/casing", func(r chi.Router) {
			r.Post("/camel", cfg.CodecHandler.CamelKeys)
			r.Post("/snake", cfg.CodecHandler.SnakeKeys)
		})

		r.Route("/reachability", func(r chi.Router) {
			r.Post("/check", cfg.ReachabilityHandler.Check)

			// Assert is the middleware form: 204 when the URL answers,
			// 422 when it does not.
			r.With(middleware.RequireReachableURL(cfg.Checker, "url")).
				Post("/assert", handlers.NoContent)
		})

		if cfg.VaultHandler != nil {
			r.Route("/vault", func(r chi.Router) {
				r.Put("/{name}", cfg.VaultHandler.Put)
				r.Get("/{name}", cfg.VaultHandler.Get)
				r.Delete("/{name}", cfg.VaultHandler.Delete)
			})
			r.Get("/audit", cfg.VaultHandler.Audit)
		}
	})

	r.Get("/health", cfg.HealthHandler.Health)
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	return r
}
