package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/dmitrymomot/anonmail"
	"github.com/dmitrymomot/anonmail/config"
	"github.com/dmitrymomot/anonmail/internal"
	"github.com/dmitrymomot/anonmail/middlewares"
	"github.com/dmitrymomot/anonmail/pkg/logger"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.New().Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	log := logger.NewWithSentry(cfg.Sentry, middlewares.RequestIDExtractor())

	app, err := anonmail.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to build application", slog.Any("error", err))
		os.Exit(1)
	}

	// Run blocks until SIGINT/SIGTERM; in-flight sends finish before Sentry is flushed.
	if err := app.Run(cfg.Server.Addr(),
		internal.Logger(log),
		internal.WithContext(ctx),
		internal.ShutdownTimeout(cfg.Server.ShutdownTimeout),
		internal.ShutdownHook(logger.FlushSentry),
	); err != nil {
		log.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
