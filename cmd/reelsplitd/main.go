// Command reelsplitd runs the reelsplit daemon: the HTTP API plus the
// background retention sweep.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"reelsplit/internal/config"
	"reelsplit/internal/daemon"
	"reelsplit/internal/jobs"
	"reelsplit/internal/logging"
	"reelsplit/internal/media/ffmpeg"
	"reelsplit/internal/retention"
	"reelsplit/internal/server"
	"reelsplit/internal/splitter"
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

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := jobs.Open(cfg)
	if err != nil {
		logger.Error("open job store", logging.Error(err))
		return
	}

	client := ffmpeg.NewCLI(ffmpeg.WithBinary(cfg.FFmpegBinary()))
	split := splitter.New(cfg, store, client, logger)
	sweeper := retention.New(cfg, store, logger)
	srv := server.New(cfg, store, split, sweeper, logger)

	d, err := daemon.New(cfg, store, srv, sweeper, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		_ = store.Close()
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("start daemon", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("reelsplitd shutting down")
}
