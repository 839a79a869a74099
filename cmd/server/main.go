package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/indicators/internal/config"
	"github.com/JonMunkholm/indicators/internal/core"
	"github.com/JonMunkholm/indicators/internal/logging"
	"github.com/JonMunkholm/indicators/internal/metrics"
	"github.com/JonMunkholm/indicators/internal/store"
	"github.com/JonMunkholm/indicators/internal/web"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Warn("failed to read .env file", "error", err)
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"store", cfg.Database.Driver,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"metrics_enabled", cfg.Metrics.Enabled,
	)

	ctx := context.Background()
	st, err := store.Open(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	var (
		m    *metrics.Metrics
		rec  core.Recorder
		opts = []web.Option{web.WithHealthCheck(st.Ping)}
	)
	if cfg.Metrics.Enabled {
		if m, err = metrics.New(cfg.Metrics.Namespace); err != nil {
			slog.Error("failed to register metrics", "error", err)
			os.Exit(1)
		}
		rec = m
		opts = append(opts, web.WithMetrics(m))
	}

	service := core.NewService(st, cfg.Upload, rec)
	server := web.NewServer(service, cfg, opts...)

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Let an in-flight batch finish its commit phase.
		if status := service.LimiterStatus(); status.Active > 0 {
			slog.Info("waiting for ingest batches to complete", "active", status.Active)
			if err := service.WaitForIngests(shutdownCtx); err != nil {
				slog.Warn("ingest batches did not complete in time", "error", err)
			} else {
				slog.Info("all ingest batches completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		st.Close()
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}
