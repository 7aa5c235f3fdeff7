package brain

import (
	"context"
	"fmt"
	"strings"
)

// MockAdapter is a deterministic stand-in used for local runs and tests.
type MockAdapter struct{}

func NewMockAdapter() *MockAdapter { return &MockAdapter{} }

func (a *MockAdapter) Respond(_ context.Context, req Request) (Response, error) {
	input := strings.TrimSpace(req.Input)
	if input == "" {
		return Response{Text: "I did not catch that."}, nil
	}
	if len(req.MemoryContext) > 0 {
		return Response{Text: fmt.Sprintf("Considering %d memories: you said %q.", len(req.MemoryContext), input)}, nil
	}
	return Response{Text: fmt.Sprintf("You said %q.", input)}, nil
}
