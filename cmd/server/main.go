package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"terralegit/internal/platform/config"
	"terralegit/internal/platform/httpserver"
	"terralegit/internal/platform/logger"
)

func main() {
	if err := run(); err != nil {
		slog.Error("terralegit exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	infra, err := openInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer infra.Close()

	app, err := wire(ctx, cfg, infra, log)
	if err != nil {
		return err
	}

	srv := httpserver.New(cfg.Addr, app.router)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting terralegit", "addr", cfg.Addr, "environment", cfg.Environment, "storage", infra.mode())
		return httpserver.Serve(gctx, srv, 10*time.Second)
	})
	if app.relay != nil {
		g.Go(func() error {
			log.Info("audit outbox relay started", "topic", cfg.Kafka.AuditTopic)
			return app.relay.Run(gctx)
		})
	}
	return g.Wait()
}
