// Copyright (c) 2026 Univera. All rights reserved.
// Author: dev@univera.app

// Command stubapi is the entry point for the stub university API.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL when DATABASE_URL is set; otherwise run on
//     seeded in-memory stores.
//  4. Run database migrations (idempotent, Postgres mode only).
//  5. Seed the demo directory accounts.
//  6. Wire HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
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

	"github.com/univera/portal/internal/api"
	"github.com/univera/portal/internal/platform/config"
	"github.com/univera/portal/internal/platform/constants"
	"github.com/univera/portal/internal/platform/migration"
	pgstore "github.com/univera/portal/internal/platform/postgres"
	"github.com/univera/portal/internal/platform/sec"
	"github.com/univera/portal/internal/stub/bulletin"
	"github.com/univera/portal/internal/stub/directory"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "univera-stub"))
	slog.SetDefault(log)

	log.Info("[Univera] stub_api_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.LoadStub()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "univera-stub"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.Bool("postgres", cfg.DatabaseURL != ""),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. Storage ────────────────────────────────────────────────────────
	// Postgres when configured, seeded memory otherwise. The memory mode
	// exists so the portal can be developed with zero infrastructure.
	var accounts directory.AccountRepository
	var posts bulletin.PostRepository
	var databaseCheck func() error

	if cfg.DatabaseURL != "" {
		pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
		must(log, err, "connect to postgres")
		defer func() {
			log.Info("closing postgres pool")
			pool.Close()
		}()

		// ── 4. Migrations ─────────────────────────────────────────────────
		must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

		accounts = directory.NewPostgresAccountRepository(pool)
		posts = bulletin.NewPostgresPostRepository(pool)
		databaseCheck = func() error {
			return pgstore.Ping(context.Background(), pool)
		}
	} else {
		accounts = directory.NewMemoryAccountRepository()
		posts = bulletin.NewMemoryPostRepository()
	}

	// ── 5. Seed ───────────────────────────────────────────────────────────
	must(log, directory.Seed(startupCtx, accounts, log), "seed directory accounts")

	// ── 6. Token Service ──────────────────────────────────────────────────
	tokens, err := sec.NewTokenService(cfg.SessionSecret, constants.AuthIssuer)
	must(log, err, "initialize token service")

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: databaseCheck,
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	directoryService := directory.NewService(accounts, tokens)
	handlers := api.StubHandlers{
		Liveness:  liveness,
		Readiness: readiness,
		Directory: directory.NewHandler(directoryService),
		Bulletin:  bulletin.NewHandler(posts),
	}

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	server := api.NewStubServer(rootCtx, cfg, log, tokens, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
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
