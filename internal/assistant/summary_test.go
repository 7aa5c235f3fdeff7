package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mvaleriani/elysia/internal/brain"
)

func TestBrainSummarizer(t *testing.T) {
	s := NewBrainSummarizer(brain.NewMockAdapter())
	out, err := s.Summarize(context.Background(), "a long explanation of something")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if out == "" {
		t.Fatal("Summarize() returned empty summary")
	}
}

func TestBrainSummarizerUnavailableOnFailure(t *testing.T) {
	s := NewBrainSummarizer(failingAdapter{err: errors.New("model down")})
	_, err := s.Summarize(context.Background(), "anything")
	if !errors.Is(err, ErrSummaryUnavailable) {
		t.Fatalf("Summarize() error = %v, want ErrSummaryUnavailable", err)
	}
}

func TestTruncateSummarizer(t *testing.T) {
	s := NewTruncateSummarizer(10)

	out, err := s.Summarize(context.Background(), "short")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if out != "short" {
		t.Fatalf("Summarize() = %q, want %q", out, "short")
	}

	long := strings.Repeat("abcde ", 10)
	out, err = s.Summarize(context.Background(), long)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if !strings.HasSuffix(out, "...") {
		t.Fatalf("Summarize() = %q, want truncation marker", out)
	}
	if len([]rune(out)) > 13 {
		t.Fatalf("Summarize() length = %d, want at most 13 runes", len([]rune(out)))
	}
}

func TestChainFallsThroughToTruncation(t *testing.T) {
	c := Chain{
		NewBrainSummarizer(failingAdapter{err: errors.New("model down")}),
		NewTruncateSummarizer(10),
	}
	out, err := c.Summarize(context.Background(), strings.Repeat("x", 50))
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if !strings.HasSuffix(out, "...") {
		t.Fatalf("Summarize() = %q, want truncated fallback", out)
	}
}

func TestChainStopsOnUnexpectedError(t *testing.T) {
	boom := errors.New("boom")
	c := Chain{
		erroringSummarizer{err: boom},
		NewTruncateSummarizer(10),
	}
	if _, err := c.Summarize(context.Background(), "text"); !errors.Is(err, boom) {
		t.Fatalf("Summarize() error = %v, want boom", err)
	}
}

func TestChainExhausted(t *testing.T) {
	c := Chain{NewBrainSummarizer(failingAdapter{err: errors.New("down")})}
	if _, err := c.Summarize(context.Background(), "text"); !errors.Is(err, ErrSummaryUnavailable) {
		t.Fatalf("Summarize() error = %v, want ErrSummaryUnavailable", err)
	}
}

type erroringSummarizer struct{ err error }

func (s erroringSummarizer) Summarize(context.Context, string) (string, error) {
	return "", s.err
}
