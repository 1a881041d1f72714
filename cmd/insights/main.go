package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"insights/internal/cli"
	apphttp "insights/internal/http"
	applog "insights/internal/log"
)

func main() {
	cli.LoadEnvFile()

	cfg := cli.LoadAndValidateConfig(cli.SetupLogger(os.Getenv("LOG_LEVEL")))
	logger := cli.SetupLogger(cfg.LogLevel).WithComponent(applog.ComponentApp)

	result := cli.InitBackend(context.Background(), logger, cfg)
	engine := cli.NewEngine(context.Background(), logger, result)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Options{
		Engine:       engine,
		Transactions: result.Backend,
		Logger:       logger,
		CacheSize:    cfg.CacheSize,
		CacheTTL:     cfg.CacheTTL,

		TrustedProxies: cfg.TrustedProxies,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		cli.RunCleanup(logger, "backend", result.Cleanup)
	})

	logger.Info("Starting insights server",
		applog.FieldOperation, applog.OpStartup,
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"amqp", result.Publisher != nil)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		cli.RunCleanup(logger, "backend", result.Cleanup)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
