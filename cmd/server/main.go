package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/recordviewer/internal/bootstrap"
	"github.com/JonMunkholm/recordviewer/internal/config"
	"github.com/JonMunkholm/recordviewer/internal/core"
	"github.com/JonMunkholm/recordviewer/internal/logging"
	"github.com/JonMunkholm/recordviewer/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	logging.LogEnvFile(godotenv.Overload())

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"sources", cfg.Collection.Sources,
		"database", cfg.Database.Enabled(),
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx := context.Background()
	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialise", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	service := app.Service

	// A failed initial load is not fatal: the page renders the error and
	// the collection can still be uploaded or reloaded.
	if _, err := service.Load(ctx); err != nil {
		slog.Warn("initial collection load failed", "error", err)
	}

	server := web.NewServer(service, web.Lookups{
		Wikipedia: app.Wikipedia,
		Discogs:   app.Discogs,
	}, cfg)

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()

	if cfg.Collection.Watch {
		go func() {
			if err := app.Watch(jobCtx, nil); err != nil {
				slog.Error("file watcher stopped", "error", err)
			}
		}()
	}

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for active uploads to complete (with timeout)
		if status := service.Limiter().Status(); status.Active > 0 {
			slog.Info("waiting for uploads to complete", "active", status.Active)
			if err := service.Limiter().WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("uploads did not complete in time", "error", err)
			} else {
				slog.Info("all uploads completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	// Ready needs a committed collection too, which may only arrive with a
	// later upload or reload.
	service.Gate().Then(jobCtx, func() {
		source, _ := service.Store().Source()
		slog.Info("serving collection", "addr", cfg.Server.Addr(), "source", source)
	})

	// The view condition is met once the router is mounted; Start blocks.
	service.Gate().Mark(core.ReadyView)

	if err := server.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}
