package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mvaleriani/elysia/internal/brain"
)

// ErrSummaryUnavailable signals that a strategy cannot summarize right now
// and the chain should move on. Any other error aborts the chain.
var ErrSummaryUnavailable = errors.New("summary strategy unavailable")

// Summarizer condenses a long response into something worth speaking aloud.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// BrainSummarizer asks the model for a one-to-two sentence summary. Model
// failures (including an open circuit) map to ErrSummaryUnavailable so the
// chain can fall through.
type BrainSummarizer struct {
	adapter brain.Adapter
}

func NewBrainSummarizer(adapter brain.Adapter) *BrainSummarizer {
	return &BrainSummarizer{adapter: adapter}
}

func (s *BrainSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	resp, err := s.adapter.Respond(ctx, brain.Request{
		System: "Summarize the following text in one or two sentences. Reply with the summary only.",
		Input:  text,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSummaryUnavailable, err)
	}
	out := strings.TrimSpace(resp.Text)
	if out == "" {
		return "", fmt.Errorf("%w: empty model summary", ErrSummaryUnavailable)
	}
	return out, nil
}

// TruncateSummarizer is the terminal strategy. It never fails.
type TruncateSummarizer struct {
	MaxRunes int
}

func NewTruncateSummarizer(maxRunes int) *TruncateSummarizer {
	if maxRunes <= 0 {
		maxRunes = 240
	}
	return &TruncateSummarizer{MaxRunes: maxRunes}
}

func (s *TruncateSummarizer) Summarize(_ context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= s.MaxRunes {
		return text, nil
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:s.MaxRunes])) + "...", nil
}

// Chain tries each strategy in order. A strategy is skipped only when it
// reports ErrSummaryUnavailable; any other error stops the chain.
type Chain []Summarizer

func (c Chain) Summarize(ctx context.Context, text string) (string, error) {
	for _, s := range c {
		out, err := s.Summarize(ctx, text)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, ErrSummaryUnavailable) {
			continue
		}
		return "", err
	}
	return "", ErrSummaryUnavailable
}
