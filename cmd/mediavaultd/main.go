package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"mediavault/internal/config"
	"mediavault/internal/daemon"
	"mediavault/internal/logging"
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

	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		LogDir: cfg.Paths.LogDir,
	})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	svc, store, err := buildServices(ctx, cfg, logger)
	if err != nil {
		logger.Error("build services", logging.Error(err))
		os.Exit(1)
	}

	d, err := daemon.New(cfg, svc, store, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		_ = store.Close()
		os.Exit(1)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("start daemon", logging.Error(err))
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("mediavaultd shutting down")
	d.Stop()
}
