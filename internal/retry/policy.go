package retry

import (
	"context"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy is an explicit, broker-independent retry discipline: delay grows
// exponentially per delivery attempt until MaxAttempts, after which the
// request is marked FAILED instead of being retried further. It is passed
// into consumer loops so business logic stays free of retry concerns.
type Policy struct {
	// MaxAttempts bounds total deliveries of one message, first delivery included
	MaxAttempts int
	// BaseDelay is the redelivery delay after the first failure
	BaseDelay time.Duration
	// Multiplier scales the delay for each subsequent attempt
	Multiplier float64
	// MaxDelay caps the computed delay
	MaxDelay time.Duration
}

// DefaultPolicy mirrors the broker defaults used across the pipeline stages
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 5,
		BaseDelay:   2 * time.Second,
		Multiplier:  2.0,
		MaxDelay:    2 * time.Minute,
	}
}

// Delay returns the redelivery delay after the given delivery attempt
// (1-based). Attempt values below 1 are treated as the first attempt.
func (p Policy) Delay(attempt uint64) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	d := time.Duration(float64(p.BaseDelay) * math.Pow(p.Multiplier, float64(attempt-1)))
	if d > p.MaxDelay || d < 0 {
		d = p.MaxDelay
	}
	return d
}

// Exhausted reports whether a message delivered the given number of times
// has used up its retry budget
func (p Policy) Exhausted(delivered uint64) bool {
	return delivered >= uint64(p.MaxAttempts)
}

// BackOff bridges the policy to cenkalti/backoff for synchronous collaborator
// calls (blob store, reference data) that retry in-process rather than through
// broker redelivery
func (p Policy) BackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.Multiplier = p.Multiplier
	b.MaxInterval = p.MaxDelay

	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(p.MaxAttempts-1)), ctx)
}
