// Package ratelimit spaces calls to external services with a token bucket.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/essaycorpus/internal/core/ports/driven"
)

// Ensure Pacer implements the interface.
var _ driven.Pacer = (*Pacer)(nil)

// DefaultDelay is the spacing between embedding calls.
const DefaultDelay = 100 * time.Millisecond

// Pacer allows one call per delay with no bursting beyond a single call.
// A zero or negative delay never blocks.
type Pacer struct {
	limiter *rate.Limiter
	delay   time.Duration
}

// NewPacer creates a pacer that admits one call every delay.
func NewPacer(delay time.Duration) *Pacer {
	if delay <= 0 {
		return &Pacer{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Pacer{
		limiter: rate.NewLimiter(rate.Every(delay), 1),
		delay:   delay,
	}
}

// Delay returns the configured spacing.
func (p *Pacer) Delay() time.Duration {
	return p.delay
}

// Wait blocks until the next call may be made or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}
