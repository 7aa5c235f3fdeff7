package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	setCoreEnvEmpty(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.BindAddr != ":8090" {
		t.Fatalf("BindAddr = %q, want %q", cfg.BindAddr, ":8090")
	}
	if cfg.JournalDir != "./mem_journal" {
		t.Fatalf("JournalDir = %q, want default", cfg.JournalDir)
	}
	if cfg.Collection != "persona_memory" {
		t.Fatalf("Collection = %q, want persona_memory", cfg.Collection)
	}
	if cfg.SyncToken != "changeme" {
		t.Fatalf("SyncToken = %q, want changeme", cfg.SyncToken)
	}
	if cfg.EmbeddingProvider != "hash" || cfg.EmbeddingDim != 256 {
		t.Fatalf("embedding defaults = %q/%d, want hash/256", cfg.EmbeddingProvider, cfg.EmbeddingDim)
	}
	if cfg.SaveThreshold != 800 {
		t.Fatalf("SaveThreshold = %d, want 800", cfg.SaveThreshold)
	}
	if cfg.DatabaseURL != "" {
		t.Fatalf("DatabaseURL = %q, want empty default", cfg.DatabaseURL)
	}
	if cfg.SyncReadTimeout != 30*time.Second {
		t.Fatalf("SyncReadTimeout = %v, want 30s", cfg.SyncReadTimeout)
	}
}

func TestLoadExplicitValues(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("ELYSIA_JOURNAL_DIR", "/var/lib/elysia/journal")
	t.Setenv("ELYSIA_SYNC_TOKEN", "s3cret")
	t.Setenv("EMBEDDING_DIM", "512")
	t.Setenv("SYNC_UPLOAD_INTERVAL", "5m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.JournalDir != "/var/lib/elysia/journal" {
		t.Fatalf("JournalDir = %q, want explicit value", cfg.JournalDir)
	}
	if cfg.SyncToken != "s3cret" {
		t.Fatalf("SyncToken = %q, want explicit value", cfg.SyncToken)
	}
	if cfg.EmbeddingDim != 512 {
		t.Fatalf("EmbeddingDim = %d, want 512", cfg.EmbeddingDim)
	}
	if cfg.SyncUploadInterval != 5*time.Minute {
		t.Fatalf("SyncUploadInterval = %v, want 5m", cfg.SyncUploadInterval)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		key, value string
	}{
		{"EMBEDDING_DIM", "0"},
		{"EMBEDDING_DIM", "not-a-number"},
		{"ELYSIA_SAVE_THRESHOLD", "-1"},
		{"SYNC_MAX_BODY_BYTES", "0"},
		{"SYNC_RATE_LIMIT", "0"},
		{"SYNC_READ_TIMEOUT", "soon"},
		{"SYNC_WATCH", "maybe"},
	}
	for _, tc := range cases {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			setCoreEnvEmpty(t)
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("Load() accepted %s=%s", tc.key, tc.value)
			}
		})
	}
}

func setCoreEnvEmpty(t *testing.T) {
	t.Helper()
	keys := []string{
		"APP_BIND_ADDR",
		"APP_SHUTDOWN_TIMEOUT",
		"APP_METRICS_NAMESPACE",
		"ELYSIA_JOURNAL_DIR",
		"ELYSIA_DB_PATH",
		"ELYSIA_COLLECTION",
		"ELYSIA_SYNC_TOKEN",
		"ELYSIA_SYNC_URL",
		"ELYSIA_SAVE_THRESHOLD",
		"ELYSIA_RESPONSE_LOG_DIR",
		"ELYSIA_CRASH_INFO_PATH",
		"ELYSIA_PERSONA_PATH",
		"DATABASE_URL",
		"EMBEDDING_PROVIDER",
		"EMBEDDING_DIM",
		"EMBEDDING_MODEL",
		"BRAIN_MODE",
		"BRAIN_MODEL",
		"OPENAI_API_KEY",
		"OPENAI_BASE_URL",
		"VOICE_PROVIDER",
		"SYNC_MAX_BODY_BYTES",
		"SYNC_RATE_LIMIT",
		"SYNC_RATE_BURST",
		"SYNC_READ_TIMEOUT",
		"SYNC_UPLOAD_INTERVAL",
		"SYNC_WATCH",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}
