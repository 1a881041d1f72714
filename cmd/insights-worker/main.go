package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"insights/internal/cli"
	applog "insights/internal/log"
	"insights/internal/personalization"
	"insights/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg := cli.LoadAndValidateConfig(cli.SetupLogger(os.Getenv("LOG_LEVEL")))
	logger := cli.SetupLogger(cfg.LogLevel).WithComponent(applog.ComponentWorker)
	logger.Info("Starting insights-worker", applog.FieldOperation, applog.OpStartup)

	result := cli.InitBackend(context.Background(), logger, cfg)

	// The worker only reads settings, so its engine never publishes.
	engine := personalization.NewEngine(result.Backend, result.Backend, nil)
	alerts := worker.NewAlertWorker(engine, result.Backend, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		cli.RunCleanup(logger, "backend", result.Cleanup)
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return alerts.Run(gctx, cfg.SyncInterval)
	})
	if result.Publisher != nil {
		g.Go(func() error {
			return result.Publisher.ConsumeSettingsChanged(gctx, alerts.HandleSettingsChanged)
		})
	} else {
		logger.Info("AMQP disabled, running periodic alert checks only", "interval", cfg.SyncInterval)
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped", applog.FieldError, err)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
