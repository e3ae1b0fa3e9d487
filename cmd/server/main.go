package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"regionx/internal/platform/config"
	"regionx/internal/platform/httpserver"
	"regionx/internal/platform/logger"
)

// main loads configuration, wires the modules and runs the HTTP server next
// to the background workers until a signal arrives. Business logic lives in
// the internal service packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Server.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("regionx stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	app, err := build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.close()

	g, ctx := errgroup.WithContext(ctx)
	for name, job := range app.jobs {
		g.Go(func() error {
			log.Info("starting background job", "job", name)
			if err := job(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		srv := httpserver.New(cfg.Server.Addr, app.router)
		log.Info("starting regionx", "addr", cfg.Server.Addr, "storage", cfg.Storage.Driver, "kafka", cfg.Kafka.Enabled())
		return httpserver.Serve(ctx, srv, cfg.Server.ShutdownTimeout)
	})
	return g.Wait()
}
