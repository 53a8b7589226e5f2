package license

import (
	"context"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerPrm groups circuit breaker parameters.
type BreakerPrm struct {
	// MaxFailures is the number of consecutive failures opening the breaker.
	MaxFailures uint32
	// Timeout is the time the breaker stays open.
	Timeout time.Duration
	Logger  *zap.Logger
}

// Breaker is a Validator failing fast while the wrapped one is unavailable.
type Breaker struct {
	v  Validator
	cb *gobreaker.CircuitBreaker
}

// NewBreaker wraps the validator with a circuit breaker.
func NewBreaker(v Validator, prm BreakerPrm) *Breaker {
	if prm.MaxFailures == 0 {
		prm.MaxFailures = 5
	}
	if prm.Logger == nil {
		prm.Logger = zap.NewNop()
	}
	return &Breaker{
		v: v,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "license",
			Timeout: prm.Timeout,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= prm.MaxFailures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				prm.Logger.Warn("license validator circuit breaker state changed",
					zap.Stringer("from", from), zap.Stringer("to", to))
			},
		}),
	}
}

// HasValidLicense implements Validator.
func (b *Breaker) HasValidLicense(ctx context.Context, acc util.Uint160) (bool, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.v.HasValidLicense(ctx, acc)
	})
	if err != nil {
		return false, err
	}
	return res.(bool), nil
}

// MintCost implements Validator.
func (b *Breaker) MintCost(ctx context.Context) (uint64, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.v.MintCost(ctx)
	})
	if err != nil {
		return 0, err
	}
	return res.(uint64), nil
}
