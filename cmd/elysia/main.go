package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mvaleriani/elysia/internal/assistant"
	"github.com/mvaleriani/elysia/internal/brain"
	"github.com/mvaleriani/elysia/internal/config"
	"github.com/mvaleriani/elysia/internal/embedding"
	"github.com/mvaleriani/elysia/internal/journal"
	"github.com/mvaleriani/elysia/internal/memory"
	"github.com/mvaleriani/elysia/internal/observability"
	"github.com/mvaleriani/elysia/internal/persona"
	"github.com/mvaleriani/elysia/internal/voice"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	p, err := persona.Load(cfg.PersonaPath)
	if err != nil {
		log.Fatalf("persona load failed: %v", err)
	}

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

	jw, err := journal.NewWriter(cfg.JournalDir)
	if err != nil {
		log.Fatalf("journal init failed: %v", err)
	}

	adapter, err := brain.NewAdapter(brain.Config{
		Mode:    cfg.BrainMode,
		Model:   cfg.BrainModel,
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
	})
	if err != nil {
		log.Fatalf("brain adapter init failed: %v", err)
	}
	log.Printf("brain mode: %s", cfg.BrainMode)

	provider, err := voice.NewProvider(cfg.VoiceProvider)
	if err != nil {
		log.Fatalf("voice provider init failed: %v", err)
	}
	log.Printf("voice provider: %s", cfg.VoiceProvider)

	a := assistant.New(assistant.Config{
		Persona:        p,
		SaveThreshold:  cfg.SaveThreshold,
		ResponseLogDir: cfg.ResponseLogDir,
		CrashInfoPath:  cfg.CrashInfoPath,
	}, provider, adapter, store, jw, metrics)

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.Run(runCtx); err != nil {
		log.Printf("session failed: %v", err)
		if werr := assistant.WriteCrashNote(cfg.CrashInfoPath, err); werr != nil {
			log.Printf("crash note failed: %v", werr)
		}
		os.Exit(1)
	}
	log.Printf("session complete")
}
