// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Vidora HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Connect to the S3-compatible media store.
//  6. Run database migrations (idempotent).
//  7. Wire HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
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

	"github.com/taibuivan/vidora/internal/api"
	"github.com/taibuivan/vidora/internal/platform/config"
	"github.com/taibuivan/vidora/internal/platform/constants"
	"github.com/taibuivan/vidora/internal/platform/migration"
	pgstore "github.com/taibuivan/vidora/internal/platform/postgres"
	redisstore "github.com/taibuivan/vidora/internal/platform/redis"
	"github.com/taibuivan/vidora/internal/platform/sec"
	"github.com/taibuivan/vidora/internal/platform/storage"
	"github.com/taibuivan/vidora/internal/users/auth"
	"github.com/taibuivan/vidora/internal/users/profile"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "vidora"))
	slog.SetDefault(log)

	log.Info("[Vidora] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "vidora"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Media Store ────────────────────────────────────────────────────
	mediaStore, err := storage.NewMediaStore(startupCtx, storage.Options{
		Endpoint:      cfg.S3Endpoint,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		Region:        cfg.S3Region,
		UseSSL:        cfg.S3UseSSL,
		Bucket:        cfg.S3Bucket,
		PublicBaseURL: cfg.MediaBaseURL,
	}, log)
	must(log, err, "connect to media store")

	// ── 6. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 7. Token Service ──────────────────────────────────────────────────
	tokenService, err := sec.NewTokenService(sec.TokenConfig{
		AccessSecret:  cfg.AccessTokenSecret,
		RefreshSecret: cfg.RefreshTokenSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
		Issuer:        constants.AuthIssuer,
	})
	must(log, err, "initialize token service")

	// ── 8. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
		CheckMediaStore: func() error {
			return mediaStore.Ping(context.Background())
		},
	}, log)

	// ── 9. Domain Wiring ──────────────────────────────────────────────────
	userRepository := auth.NewUserRepository(pool)
	authService := auth.NewService(userRepository, tokenService, mediaStore)
	authHandler := auth.NewHandler(authService, cfg.TmpUploadDir)

	accountRepository := profile.NewAccountRepository(pool)
	subscriptionQueries := profile.NewSubscriptionQueries(pool)
	watchHistoryQueries := profile.NewWatchHistoryQueries(pool)
	statsCache := profile.NewStatsCache(rdb)
	profileService := profile.NewService(
		accountRepository,
		subscriptionQueries,
		watchHistoryQueries,
		statsCache,
		mediaStore,
		log,
	)
	profileHandler := profile.NewHandler(profileService, cfg.TmpUploadDir)

	// ── 10. HTTP Server ───────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHandler,
		Profile:   profileHandler,
	}

	server := api.NewServer(context.Background(), cfg, log, tokenService, handlers)

	// ── 11. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
