// Package ratelimit throttles a job-polling loop's request rate, wrapping
// golang.org/x/time/rate so jobpoll's WaitForCompletion (and any other
// caller polling a provider on a fixed cadence) never exceeds a provider's
// advertised polling budget even under custom backoff settings.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter wraps a token-bucket rate.Limiter for one provider's polling
// traffic. A zero Limiter (via NewUnlimited) never blocks.
type Limiter struct {
	limiter *rate.Limiter
}

// New builds a Limiter allowing ratePerSecond requests per second with
// the given burst capacity.
func New(ratePerSecond float64, burst int) *Limiter {
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst)}
}

// NewUnlimited builds a Limiter that never blocks, used when a caller
// wants the same call shape without an actual cap.
func NewUnlimited() *Limiter {
	return &Limiter{}
}

// Wait blocks until a token is available or ctx is canceled. A nil
// underlying limiter (NewUnlimited) returns immediately.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil || l.limiter == nil {
		return nil
	}
	return l.limiter.Wait(ctx)
}

// Allow reports whether a call may proceed right now without blocking,
// consuming a token if so.
func (l *Limiter) Allow() bool {
	if l == nil || l.limiter == nil {
		return true
	}
	return l.limiter.Allow()
}
