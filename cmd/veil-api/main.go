package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/veilbox/veil/internal/api/handlers"
	"github.com/veilbox/veil/internal/api/middleware"
	"github.com/veilbox/veil/internal/api/router"
	"github.com/veilbox/veil/internal/config"
	"github.com/veilbox/veil/internal/crypto"
	"github.com/veilbox/veil/internal/reachability"
	"github.com/veilbox/veil/internal/sanitize"
	"github.com/veilbox/veil/internal/store/postgres"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// .env is a development convenience; its absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("FATAL: configuration invalid", "error", err)
		os.Exit(1)
	}

	store := config.NewStore()
	if err := store.Set(cfg); err != nil {
		logger.Error("FATAL: config store rejected initialisation", "error", err)
		os.Exit(1)
	}

	codec := crypto.NewCodec(store)
	sanitizer := sanitize.New()
	checker := reachability.NewChecker()

	// Vault routes only come up when a database is configured; the masking
	// and casing endpoints have no storage dependency.
	var vaultHandler *handlers.VaultHandler
	if cfg.DatabaseURL != "" {
		pool, err := postgres.NewPool(context.Background(), cfg.DatabaseURL)
		if err != nil {
			logger.Error("FATAL: database connection failed", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		auditDB, err := postgres.OpenAuditDB(cfg.DatabaseURL)
		if err != nil {
			logger.Error("FATAL: audit database connection failed", "error", err)
			os.Exit(1)
		}
		defer auditDB.Close()

		vaultHandler = handlers.NewVaultHandler(
			postgres.NewSecretRepo(pool),
			postgres.NewAuditRepo(auditDB, codec),
			codec,
			logger,
		)
	}

	cryptoReady := func() bool {
		_, err := store.CryptoConfig()
		return err == nil
	}

	mux := router.New(router.Config{
		AllowedOrigins:      cfg.AllowedOrigins,
		Logger:              logger,
		Sanitizer:           sanitizer,
		Checker:             checker,
		CodecHandler:        handlers.NewCodecHandler(codec, sanitizer),
		ReachabilityHandler: handlers.NewReachabilityHandler(checker),
		HealthHandler:       handlers.NewHealthHandler(cryptoReady),
		VaultHandler:        vaultHandler,
		TokenAuth:           middleware.NewTokenAuth(cfg.DevelopmentToken, logger),
	})

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	if len(cfg.WatchURLs) > 0 {
		watcher := reachability.NewWatcher(checker, cfg.WatchURLs, logger, time.Minute)
		go watcher.Start(workerCtx)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("veil API active", "port", cfg.Port, "env", cfg.Environment, "crypto_ready", cryptoReady())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("CRITICAL: server crashed", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	logger.Info("Shutting down...")
	cancelWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("ERROR: forced shutdown", "error", err)
	}
}
