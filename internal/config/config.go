package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the assistant, the sync ingest
// server, and the journal uploader. Components receive it (or slices of it)
// at construction; there is no ambient global state.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	JournalDir  string
	SQLitePath  string
	Collection  string
	DatabaseURL string

	SyncToken          string
	SyncURL            string
	SyncMaxBodyBytes   int64
	SyncRateLimit      float64
	SyncRateBurst      int
	SyncReadTimeout    time.Duration
	SyncUploadInterval time.Duration
	SyncWatch          bool

	EmbeddingProvider string
	EmbeddingDim      int
	EmbeddingModel    string

	BrainMode     string
	BrainModel    string
	OpenAIAPIKey  string
	OpenAIBaseURL string

	VoiceProvider string

	PersonaPath    string
	SaveThreshold  int
	ResponseLogDir string
	CrashInfoPath  string
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:          envOrDefault("APP_BIND_ADDR", ":8090"),
		MetricsNamespace:  envOrDefault("APP_METRICS_NAMESPACE", "elysia"),
		JournalDir:        envOrDefault("ELYSIA_JOURNAL_DIR", "./mem_journal"),
		SQLitePath:        envOrDefault("ELYSIA_DB_PATH", "./elysia.db"),
		Collection:        envOrDefault("ELYSIA_COLLECTION", "persona_memory"),
		DatabaseURL:       trimmedEnv("DATABASE_URL"),
		SyncToken:         envOrDefault("ELYSIA_SYNC_TOKEN", "changeme"),
		SyncURL:           trimmedEnv("ELYSIA_SYNC_URL"),
		EmbeddingProvider: envOrDefault("EMBEDDING_PROVIDER", "hash"),
		EmbeddingDim:      256,
		EmbeddingModel:    trimmedEnv("EMBEDDING_MODEL"),
		BrainMode:         envOrDefault("BRAIN_MODE", "mock"),
		BrainModel:        envOrDefault("BRAIN_MODEL", "gpt-4o-mini"),
		OpenAIAPIKey:      trimmedEnv("OPENAI_API_KEY"),
		OpenAIBaseURL:     trimmedEnv("OPENAI_BASE_URL"),
		VoiceProvider:     envOrDefault("VOICE_PROVIDER", "console"),
		PersonaPath:       trimmedEnv("ELYSIA_PERSONA_PATH"),
		SaveThreshold:     800,
		ResponseLogDir:    envOrDefault("ELYSIA_RESPONSE_LOG_DIR", "response_logs"),
		CrashInfoPath:     envOrDefault("ELYSIA_CRASH_INFO_PATH", "crash_info.txt"),
		ShutdownTimeout:   15 * time.Second,
		SyncMaxBodyBytes:  32 << 20,
		SyncRateLimit:     10,
		SyncRateBurst:     20,
		SyncReadTimeout:   30 * time.Second,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.SyncReadTimeout, err = durationFromEnv("SYNC_READ_TIMEOUT", cfg.SyncReadTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.SyncUploadInterval, err = durationFromEnv("SYNC_UPLOAD_INTERVAL", 0)
	if err != nil {
		return Config{}, err
	}
	cfg.SyncWatch, err = boolFromEnv("SYNC_WATCH", false)
	if err != nil {
		return Config{}, err
	}
	cfg.EmbeddingDim, err = intFromEnv("EMBEDDING_DIM", cfg.EmbeddingDim)
	if err != nil {
		return Config{}, err
	}
	cfg.SaveThreshold, err = intFromEnv("ELYSIA_SAVE_THRESHOLD", cfg.SaveThreshold)
	if err != nil {
		return Config{}, err
	}
	cfg.SyncMaxBodyBytes, err = int64FromEnv("SYNC_MAX_BODY_BYTES", cfg.SyncMaxBodyBytes)
	if err != nil {
		return Config{}, err
	}
	cfg.SyncRateLimit, err = floatFromEnv("SYNC_RATE_LIMIT", cfg.SyncRateLimit)
	if err != nil {
		return Config{}, err
	}
	cfg.SyncRateBurst, err = intFromEnv("SYNC_RATE_BURST", cfg.SyncRateBurst)
	if err != nil {
		return Config{}, err
	}

	if cfg.EmbeddingDim <= 0 {
		return Config{}, fmt.Errorf("EMBEDDING_DIM must be positive")
	}
	if cfg.SaveThreshold <= 0 {
		return Config{}, fmt.Errorf("ELYSIA_SAVE_THRESHOLD must be positive")
	}
	if cfg.SyncMaxBodyBytes <= 0 {
		return Config{}, fmt.Errorf("SYNC_MAX_BODY_BYTES must be positive")
	}
	if cfg.SyncRateLimit <= 0 {
		return Config{}, fmt.Errorf("SYNC_RATE_LIMIT must be positive")
	}
	if cfg.SyncRateBurst <= 0 {
		return Config{}, fmt.Errorf("SYNC_RATE_BURST must be positive")
	}
	if strings.TrimSpace(cfg.Collection) == "" {
		return Config{}, fmt.Errorf("ELYSIA_COLLECTION must not be empty")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func trimmedEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func int64FromEnv(key string, fallback int64) (int64, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func floatFromEnv(key string, fallback float64) (float64, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return f, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(trimmedEnv(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
