// Package main is the entry point for the vinyl-service HTTP server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/DoggoSantini/vinyl-service/internal/app"
	"github.com/DoggoSantini/vinyl-service/internal/config"
	"github.com/DoggoSantini/vinyl-service/internal/logging"
	"github.com/DoggoSantini/vinyl-service/internal/server"
)

func main() {
	// run() returns instead of exiting so deferred cleanup still happens.
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("VINYL_CONFIG_PATH"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(logging.Options{
		Level:          cfg.Log.Level,
		FilePath:       cfg.Log.FilePath,
		FileMaxSizeMB:  cfg.Log.FileMaxSizeMB,
		FileMaxFiles:   cfg.Log.FileMaxFiles,
		FileMaxAgeDays: cfg.Log.FileMaxAgeDays,
	})
	if err != nil {
		return err
	}
	// Sync commonly fails on stdout/stderr; that is not worth reporting.
	defer func() { _ = logger.Sync() }()

	// appCtx outlives individual requests; it scopes catalog token refreshes.
	appCtx, cancelApp := context.WithCancel(context.Background())
	defer cancelApp()

	svc := app.NewAlbumService(appCtx, cfg, logger)
	srv := server.New(cfg, server.Deps{Resolver: svc}, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		if err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(ctx)
}
