package memory

import (
	"context"
	"strings"

	"github.com/mvaleriani/elysia/internal/embedding"
)

// Config selects and parameterizes the store backend. The backing location
// and collection name are opaque deployment configuration to the rest of
// the system.
type Config struct {
	DatabaseURL string // postgres; takes precedence when set
	SQLitePath  string // local sqlite database file
	Collection  string // logical collection name
}

// NewStore creates a postgres-backed store when DATABASE_URL is configured,
// a sqlite store when a local path is, and falls back to in-memory for
// throwaway runs.
func NewStore(ctx context.Context, cfg Config, embedder embedding.Embedder) (Store, error) {
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		return NewPostgresStore(ctx, cfg.DatabaseURL, cfg.Collection, embedder)
	}
	if strings.TrimSpace(cfg.SQLitePath) != "" {
		return NewSQLiteStore(cfg.SQLitePath, cfg.Collection, embedder)
	}
	return NewInMemoryStore(embedder), nil
}
