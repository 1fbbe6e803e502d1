// Copyright (c) 2026 Univera. All rights reserved.
// Author: dev@univera.app

// Command portal is the entry point for the Univera portal gateway.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Open the durable session store (file, or Redis when configured).
//  4. Rehydrate the session state and wire the auth client.
//  5. Run the startup token verification.
//  6. Start the background verification loop.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
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

	"github.com/univera/portal/internal/api"
	"github.com/univera/portal/internal/authclient"
	"github.com/univera/portal/internal/authflow"
	"github.com/univera/portal/internal/gate"
	"github.com/univera/portal/internal/platform/config"
	"github.com/univera/portal/internal/platform/constants"
	redisstore "github.com/univera/portal/internal/platform/redis"
	"github.com/univera/portal/internal/session"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "univera-portal"))
	slog.SetDefault(log)

	log.Info("[Univera] portal_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.LoadPortal()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "univera-portal"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("backend", cfg.BackendURL),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. Session Store ──────────────────────────────────────────────────
	// Redis when configured, the local JSON file otherwise.
	var sessionStore session.Store
	var cacheCheck func() error

	if cfg.SessionRedisURL != "" {
		rdb, err := redisstore.NewClient(startupCtx, cfg.SessionRedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing redis client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}()

		sessionStore = session.NewRedisStore(rdb)
		cacheCheck = func() error {
			return redisstore.Ping(context.Background(), rdb)
		}
	} else {
		must(log, session.EnsureParentDir(cfg.SessionFile), "create session directory")
		fileStore, err := session.NewFileStore(cfg.SessionFile)
		must(log, err, "open session file")
		sessionStore = fileStore
	}

	// ── 4. Session State & Auth Client ────────────────────────────────────
	state, err := session.NewState(sessionStore, session.WithStateLogger(log))
	must(log, err, "rehydrate session state")

	backend := authclient.NewClient(cfg.BackendURL, authclient.WithLogger(log))
	verifier := session.NewVerifier(state, backend, session.WithVerifierLogger(log))
	flow := authflow.New(state, backend, authflow.WithLogger(log))

	// ── 5. Startup Verification ───────────────────────────────────────────
	// Reconcile the rehydrated session with the backend before serving. A
	// failure is not fatal: a soft failure keeps the session, a hard one
	// already cleared it.
	if err := verifier.Verify(startupCtx); err != nil {
		log.Warn("startup_verification_failed", slog.Any("error", err))
	}

	// ── 6. Health handlers (wired with real dependency checkers) ──────────
	healthClient := &http.Client{Timeout: 5 * time.Second}
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckCache: cacheCheck,
		CheckBackend: func() error {
			response, err := healthClient.Get(cfg.BackendURL + "/health")
			if err != nil {
				return err
			}
			defer response.Body.Close()
			if response.StatusCode != http.StatusOK {
				return fmt.Errorf("backend health returned %d", response.StatusCode)
			}
			return nil
		},
	}, log)

	// ── 7. HTTP Server ────────────────────────────────────────────────────
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	handlers := api.PortalHandlers{
		Liveness:  liveness,
		Readiness: readiness,
		Login:     authflow.NewHandler(flow),
		Gate:      gate.NewHandler(state, verifier, flow, log),
	}

	server := api.NewPortalServer(rootCtx, cfg, log, handlers)

	// ── 8. Background Verification Loop ───────────────────────────────────
	// The periodic poll that keeps a long-running portal honest about token
	// revocation. Cancelling rootCtx stops the ticker on shutdown.
	go func() {
		ticker := time.NewTicker(constants.BackgroundVerifyInterval)
		defer ticker.Stop()

		for {
			select {
			case <-rootCtx.Done():
				return
			case <-ticker.C:
				if err := verifier.Verify(rootCtx); err != nil {
					log.Warn("background_verification_failed", slog.Any("error", err))
				}
			}
		}
	}()

	// ── 9. Graceful Shutdown ──────────────────────────────────────────────
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

	// Stop the background loop before draining requests.
	rootCancel()

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
