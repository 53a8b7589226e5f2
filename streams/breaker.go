package streams

import (
	"context"
	"errors"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Breaker is a Registry failing fast while the wrapped one is unavailable.
type Breaker struct {
	r  Registry
	cb *gobreaker.CircuitBreaker
}

// NewBreaker wraps the stream registry with a circuit breaker opening after
// maxFailures consecutive failures for the given timeout.
func NewBreaker(r Registry, maxFailures uint32, timeout time.Duration, log *zap.Logger) *Breaker {
	if maxFailures == 0 {
		maxFailures = 5
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Breaker{
		r: r,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "streams",
			Timeout: timeout,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= maxFailures
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, ErrStreamNotFound)
			},
			OnStateChange: func(_ string, from, to gobreaker.State) {
				log.Warn("stream registry circuit breaker state changed",
					zap.Stringer("from", from), zap.Stringer("to", to))
			},
		}),
	}
}

// CreateStream implements Registry.
func (b *Breaker) CreateStream(ctx context.Context, vehicleNode uint64, owner util.Uint160) (string, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.r.CreateStream(ctx, vehicleNode, owner)
	})
	if err != nil {
		return "", err
	}
	return res.(string), nil
}

// DeleteStream implements Registry.
func (b *Breaker) DeleteStream(ctx context.Context, id string) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.r.DeleteStream(ctx, id)
	})
	return err
}
