package voice

import (
	"context"
	"io"
	"sync"
)

// MockProvider replays scripted utterances and records what was spoken.
// Used in tests and as the fallback when no real provider is configured.
type MockProvider struct {
	mu     sync.Mutex
	inputs []string
	spoken []string
}

func NewMockProvider(inputs ...string) *MockProvider {
	return &MockProvider{inputs: inputs}
}

func (p *MockProvider) Listen(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.inputs) == 0 {
		return "", io.EOF
	}
	next := p.inputs[0]
	p.inputs = p.inputs[1:]
	return next, nil
}

func (p *MockProvider) Speak(_ context.Context, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.spoken = append(p.spoken, text)
	return nil
}

// Spoken returns everything spoken so far.
func (p *MockProvider) Spoken() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.spoken))
	copy(out, p.spoken)
	return out
}
