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

	"github.com/felixgeelhaar/cadence/adapter/cli"
	"github.com/felixgeelhaar/cadence/internal/app"
	"github.com/felixgeelhaar/cadence/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/cadence/pkg/config"
	"github.com/felixgeelhaar/cadence/pkg/observability"
)

func main() {
	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(observability.LogConfigFrom(cfg, "cadence-worker", cli.Version))
	slog.SetDefault(logger)
	logger.Info("starting cadence worker")

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	relayConfig := outbox.DefaultRelayConfig()
	relayConfig.PollInterval = cfg.OutboxPollInterval
	relayConfig.BatchSize = cfg.OutboxBatchSize
	relayConfig.MaxRetries = cfg.OutboxMaxRetries
	relayConfig.Retention = time.Duration(cfg.OutboxRetentionDays) * 24 * time.Hour
	relay := outbox.NewRelay(container.OutboxRepo, container.EventPublisher, relayConfig, logger)

	if cfg.OutboxProcessorEnabled {
		go func() {
			if err := relay.Run(ctx); err != nil {
				logger.Error("outbox relay error", "error", err)
			}
		}()
		go purgeLoop(ctx, relay, cfg.OutboxCleanupInterval, logger)
	} else {
		logger.Info("outbox relay disabled")
	}

	rescore, err := app.NewRescoreScheduler(container.ScorePrioritiesHandler, cfg.RescoreSchedule, cfg.RescoreMaxAge, logger)
	if err != nil {
		logger.Error("failed to create rescore scheduler", "error", err)
		os.Exit(1)
	}
	rescore.Start(ctx)
	defer rescore.Stop()

	if cfg.WorkerHealthAddr != "" {
		startHealthServer(ctx, cfg.WorkerHealthAddr, container.Health, relay, logger)
	}

	// Wait for shutdown
	<-ctx.Done()
	logger.Info("shutting down worker")
}

func purgeLoop(ctx context.Context, relay *outbox.Relay, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := relay.Purge(ctx)
			if err != nil {
				logger.Error("outbox cleanup failed", "error", err)
				continue
			}
			if deleted > 0 {
				logger.Info("outbox cleanup completed", "deleted", deleted)
			}
		}
	}
}

func startHealthServer(ctx context.Context, addr string, registry *observability.HealthRegistry, relay *outbox.Relay, logger *slog.Logger) {
	handler := registry.Handler(func() map[string]any {
		stats := relay.Stats()
		return map[string]any{
			"published":         stats.Published,
			"failed":            stats.Failed,
			"dead":              stats.Dead,
			"last_processed_at": stats.LastProcessedAt,
			"last_error":        stats.LastError,
		}
	})

	mux := http.NewServeMux()
	mux.Handle("/healthz", handler)
	mux.Handle("/readyz", handler)

	healthSrv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("health server starting", "addr", addr)
		if err := healthSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := healthSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("health server shutdown error", "error", err)
		}
	}()
}
