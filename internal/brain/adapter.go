// Package brain is the language-model boundary. The conversational loop
// hands it the user input plus retrieved memory context and receives the
// full assistant response; everything about prompting internals stays
// behind the Adapter interface.
package brain

import (
	"context"
	"fmt"
	"strings"
)

// Request is the normalized request sent to the model.
type Request struct {
	Input         string
	System        string
	MemoryContext []string
}

// Response is the model's full text response.
type Response struct {
	Text string
}

// Adapter produces a response for one request.
type Adapter interface {
	Respond(ctx context.Context, req Request) (Response, error)
}

// Config controls adapter construction. The mode is fixed here; the
// runtime never probes a model for capabilities.
type Config struct {
	Mode    string // "mock" or "openai"
	Model   string
	APIKey  string
	BaseURL string
}

// NewAdapter builds the configured adapter wrapped in a circuit breaker.
func NewAdapter(cfg Config) (Adapter, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "mock"
	}

	var inner Adapter
	switch mode {
	case "mock":
		inner = NewMockAdapter()
	case "openai":
		a, err := NewOpenAIAdapter(cfg)
		if err != nil {
			return nil, err
		}
		inner = a
	default:
		return nil, fmt.Errorf("unsupported brain mode %q (expected mock|openai)", cfg.Mode)
	}
	return WithBreaker(inner), nil
}
