package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"tryon/internal/config"
	"tryon/internal/daemon"
	"tryon/internal/generation"
	"tryon/internal/logging"
	"tryon/internal/notifications"
	"tryon/internal/orchestrator"
	"tryon/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewForDaemon(cfg.Logging.Level, cfg.Logging.Format, cfg.LogPath())
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	st, err := store.Open(cfg)
	if err != nil {
		logger.Error("open slot store", logging.Error(err))
		return
	}

	notifier := notifications.NewService(cfg)
	generator := generation.NewClient(generation.Options{
		BaseURL: cfg.Service.BaseURL,
		Timeout: cfg.ServiceTimeout(),
	})
	orc := orchestrator.New(cfg, st, logger, notifier, generator)

	d, err := daemon.New(cfg, st, logger, orc, notifier)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		_ = st.Close()
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("tryond shutting down")
}
