package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mvaleriani/elysia/internal/config"
	"github.com/mvaleriani/elysia/internal/embedding"
	"github.com/mvaleriani/elysia/internal/ingest"
	"github.com/mvaleriani/elysia/internal/memory"
	"github.com/mvaleriani/elysia/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	embedder, err := embedding.New(embedding.Config{
		Provider: cfg.EmbeddingProvider,
		Dim:      cfg.EmbeddingDim,
		Model:    cfg.EmbeddingModel,
		APIKey:   cfg.OpenAIAPIKey,
		BaseURL:  cfg.OpenAIBaseURL,
	})
	if err != nil {
		log.Fatalf("embedder init failed: %v", err)
	}

	ctx := context.Background()
	store, err := memory.NewStore(ctx, memory.Config{
		DatabaseURL: cfg.DatabaseURL,
		SQLitePath:  cfg.SQLitePath,
		Collection:  cfg.Collection,
	}, embedder)
	if err != nil {
		log.Fatalf("memory store init failed: %v", err)
	}
	defer store.Close()

	srv := ingest.New(ingest.Config{
		AuthToken:    cfg.SyncToken,
		MaxBodyBytes: cfg.SyncMaxBodyBytes,
		RateLimit:    cfg.SyncRateLimit,
		RateBurst:    cfg.SyncRateBurst,
	}, store, metrics)

	httpServer := &http.Server{
		Addr:        cfg.BindAddr,
		Handler:     srv.Router(),
		ReadTimeout: cfg.SyncReadTimeout,
	}

	go func() {
		log.Printf("sync ingest listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}
	srv.Hub().Close()

	log.Printf("shutdown complete")
}
