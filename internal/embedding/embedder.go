// Package embedding turns record text into fixed-dimension vectors for the
// memory store's similarity index.
package embedding

import (
	"context"
	"fmt"
	"strings"
)

// Embedder computes a fixed-dimension vector for a text. Implementations
// must be stable: the same text always embeds to the same vector, otherwise
// re-ingested records would drift in the index.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	Dimension() int
}

// Config controls embedder construction. The provider is fixed at
// construction time; there is no runtime probing of model capabilities.
type Config struct {
	Provider string // "hash" or "openai"
	Dim      int    // hashing embedder dimension
	Model    string // openai embedding model
	APIKey   string
	BaseURL  string
}

// New builds the configured embedder.
func New(cfg Config) (Embedder, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "hash":
		return NewHashingEmbedder(cfg.Dim), nil
	case "openai":
		return NewOpenAIEmbedder(cfg)
	default:
		return nil, fmt.Errorf("unsupported embedding provider %q (expected hash|openai)", cfg.Provider)
	}
}
