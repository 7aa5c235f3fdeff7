package main

import (
	"context"
	"log"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mvaleriani/elysia/internal/config"
	"github.com/mvaleriani/elysia/internal/syncup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if strings.TrimSpace(cfg.SyncURL) == "" {
		log.Fatalf("ELYSIA_SYNC_URL is required")
	}

	uploader := syncup.New(syncup.Config{
		JournalDir: cfg.JournalDir,
		SyncURL:    cfg.SyncURL,
		AuthToken:  cfg.SyncToken,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := uploader.Run(ctx, cfg.SyncUploadInterval, cfg.SyncWatch); err != nil {
		log.Fatalf("sync failed: %v", err)
	}
	log.Printf("sync complete")
}
