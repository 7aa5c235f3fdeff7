package brain

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestMockAdapterEchoes(t *testing.T) {
	a := NewMockAdapter()
	resp, err := a.Respond(context.Background(), Request{Input: "hello there"})
	if err != nil {
		t.Fatalf("Respond error = %v", err)
	}
	if !strings.Contains(resp.Text, "hello there") {
		t.Fatalf("mock response %q does not echo input", resp.Text)
	}
}

func TestNewAdapterDefaultsToMock(t *testing.T) {
	a, err := NewAdapter(Config{})
	if err != nil {
		t.Fatalf("NewAdapter error = %v", err)
	}
	if _, err := a.Respond(context.Background(), Request{Input: "ping"}); err != nil {
		t.Fatalf("default adapter Respond error = %v", err)
	}
}

func TestNewAdapterRejectsUnknownMode(t *testing.T) {
	if _, err := NewAdapter(Config{Mode: "psychic"}); err == nil {
		t.Fatalf("NewAdapter accepted unknown mode")
	}
}

func TestNewAdapterOpenAIRequiresKey(t *testing.T) {
	if _, err := NewAdapter(Config{Mode: "openai"}); err == nil {
		t.Fatalf("NewAdapter accepted openai mode without an API key")
	}
}

type failingAdapter struct{}

func (failingAdapter) Respond(context.Context, Request) (Response, error) {
	return Response{}, errors.New("model unavailable")
}

func TestBreakerTripsAfterConsecutiveFailures(t *testing.T) {
	b := WithBreaker(failingAdapter{})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := b.Respond(ctx, Request{Input: "x"}); err == nil {
			t.Fatalf("call %d succeeded, want failure", i)
		}
	}

	_, err := b.Respond(ctx, Request{Input: "x"})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("error after trip = %v, want ErrCircuitOpen", err)
	}
}

func TestBreakerPassesThroughSuccess(t *testing.T) {
	b := WithBreaker(NewMockAdapter())
	resp, err := b.Respond(context.Background(), Request{Input: "fine"})
	if err != nil {
		t.Fatalf("Respond error = %v", err)
	}
	if resp.Text == "" {
		t.Fatalf("empty response through breaker")
	}
}
