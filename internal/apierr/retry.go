package apierr

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

// Policy describes how a failed API call is retried: capped exponential
// backoff with jitter, so parallel workers hitting the same rate limit do
// not retry in lockstep.
//
// Zero and negative values are normalized: MaxRetries < 0 means a single
// attempt, BaseDelay <= 0 becomes 1ms, MaxDelay <= 0 becomes BaseDelay.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration

	// Jitter maps the nominal delay to the one actually slept.
	// Nil uses EqualJitter.
	Jitter func(time.Duration) time.Duration

	// OnRetry, when set, is called before each retry with the attempt
	// number (1-based), the upcoming delay and the error that caused it.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// EqualJitter keeps half of d and randomizes the other half.
func EqualJitter(d time.Duration) time.Duration {
	half := d / 2
	if half <= 0 {
		return d
	}
	return half + rand.N(half+1)
}

// NoJitter sleeps exactly the nominal delay.
func NoJitter(d time.Duration) time.Duration { return d }

func (p Policy) normalized() Policy {
	p.MaxRetries = max(p.MaxRetries, 0)
	if p.BaseDelay <= 0 {
		p.BaseDelay = time.Millisecond
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = p.BaseDelay
	}
	if p.Jitter == nil {
		p.Jitter = EqualJitter
	}
	return p
}

// Delay returns the nominal delay before retry attempt (1-based), before
// jitter: BaseDelay doubled per attempt, capped at MaxDelay.
func (p Policy) Delay(attempt int) time.Duration {
	p = p.normalized()
	d := p.BaseDelay
	for i := 1; i < attempt && d < p.MaxDelay; i++ {
		d *= 2
	}
	return min(d, p.MaxDelay)
}

// Do runs fn until it succeeds, fails with an error retryable rejects, or
// the retries run out. Waiting between attempts honors ctx.
func Do[T any](ctx context.Context, p Policy, fn func() (T, error), retryable func(error) bool) (T, error) {
	p = p.normalized()

	var zero T
	var lastErr error
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := p.Jitter(p.Delay(attempt))
			if p.OnRetry != nil {
				p.OnRetry(attempt, delay, lastErr)
			}
			if err := sleep(ctx, delay); err != nil {
				return zero, err
			}
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !retryable(err) {
			return zero, err
		}
	}

	return zero, fmt.Errorf("max retries (%d) exceeded: %w", p.MaxRetries, lastErr)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
