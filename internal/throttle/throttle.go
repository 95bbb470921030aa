// Package throttle bounds the rate of mutating GitHub requests.
package throttle

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// DefaultBandwidth is the default number of mutating requests per second.
// GitHub's secondary limit allows roughly 30 points per second and charges
// 5 points per mutating request.
const DefaultBandwidth = 6

// Gate admits one request per call to Wait. Implementations are safe for
// concurrent use.
type Gate interface {
	Wait(ctx context.Context) error
}

// RateGate is a token bucket gate.
type RateGate struct {
	limiter *rate.Limiter
}

// NewRateGate returns a gate admitting perSecond requests per second with a
// burst of perSecond.
func NewRateGate(perSecond int) (*RateGate, error) {
	if err := ValidateBandwidth(perSecond); err != nil {
		return nil, err
	}
	return &RateGate{limiter: rate.NewLimiter(rate.Limit(perSecond), perSecond)}, nil
}

// Wait blocks until a token is available or ctx is done.
func (g *RateGate) Wait(ctx context.Context) error {
	return g.limiter.Wait(ctx)
}

// ValidateBandwidth reports whether perSecond is a usable bandwidth.
func ValidateBandwidth(perSecond int) error {
	if perSecond < 1 {
		return fmt.Errorf("bandwidth must be at least 1, got %d", perSecond)
	}
	return nil
}

type unlimited struct{}

func (unlimited) Wait(ctx context.Context) error {
	return ctx.Err()
}

// Unlimited returns a gate that never blocks.
func Unlimited() Gate {
	return unlimited{}
}
