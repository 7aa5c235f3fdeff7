package brain

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
)

// ErrCircuitOpen is returned while the breaker rejects requests after the
// model has failed repeatedly.
var ErrCircuitOpen = errors.New("brain circuit open")

// BreakerAdapter protects the loop from a flapping model: after enough
// consecutive failures calls fail fast instead of hanging every turn.
type BreakerAdapter struct {
	inner Adapter
	cb    *gobreaker.CircuitBreaker
}

func WithBreaker(inner Adapter) *BreakerAdapter {
	return &BreakerAdapter{
		inner: inner,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "brain",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		}),
	}
}

func (b *BreakerAdapter) Respond(ctx context.Context, req Request) (Response, error) {
	out, err := b.cb.Execute(func() (any, error) {
		return b.inner.Respond(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return Response{}, ErrCircuitOpen
	}
	if err != nil {
		return Response{}, err
	}
	return out.(Response), nil
}
