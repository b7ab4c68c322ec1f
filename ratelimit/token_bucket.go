package ratelimit

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

var _ Limiter = &TokenBucket{}

// TokenBucket adapts x/time/rate to the Limiter contract. It holds the
// sustained rate to rps while allowing short bursts up to burst; prefer
// SlidingWindow when the quota is a hard cap per trailing interval.
type TokenBucket struct {
	lim *rate.Limiter
}

func NewTokenBucket(rps float64, burst int) (*TokenBucket, error) {
	if rps <= 0 || burst <= 0 {
		return nil, fmt.Errorf("%w: rps=%v burst=%d", ErrInvalidConfig, rps, burst)
	}
	return &TokenBucket{lim: rate.NewLimiter(rate.Limit(rps), burst)}, nil
}

func (t *TokenBucket) Type() Type { return TokenBucketType }

func (t *TokenBucket) Acquire(ctx context.Context) error {
	if err := t.lim.Wait(ctx); err != nil {
		return fmt.Errorf("ratelimit: acquire aborted: %w", err)
	}
	return nil
}
