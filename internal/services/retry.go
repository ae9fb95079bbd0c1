package services

import (
	"context"
	"fmt"
	"time"
)

const (
	defaultRetryAttempts  = 5
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryMaxDelay  = 30 * time.Second
)

// RetryPolicy performs bounded exponential backoff around an operation.
// The zero value is not usable; construct with NewRetryPolicy.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration

	// Sleep overrides how backoff waits are performed (useful for tests).
	Sleep func(time.Duration)
}

// NewRetryPolicy builds a policy with defaults applied for zero fields.
func NewRetryPolicy(maxAttempts int, baseDelay, maxDelay time.Duration) RetryPolicy {
	if maxAttempts <= 0 {
		maxAttempts = defaultRetryAttempts
	}
	if baseDelay <= 0 {
		baseDelay = defaultRetryBaseDelay
	}
	if maxDelay <= 0 {
		maxDelay = defaultRetryMaxDelay
	}
	return RetryPolicy{MaxAttempts: maxAttempts, BaseDelay: baseDelay, MaxDelay: maxDelay}
}

// Do runs fn up to MaxAttempts times, doubling the delay between attempts
// up to MaxDelay. retryable decides whether a failure is retried; a nil
// retryable falls back to Retryable. Context cancellation aborts between
// attempts.
func (p RetryPolicy) Do(ctx context.Context, op string, retryable func(error) bool, fn func() error) error {
	if retryable == nil {
		retryable = Retryable
	}
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = defaultRetryAttempts
	}
	delay := p.BaseDelay
	if delay <= 0 {
		delay = defaultRetryBaseDelay
	}
	maxDelay := p.MaxDelay
	if maxDelay <= 0 {
		maxDelay = defaultRetryMaxDelay
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) {
			return lastErr
		}
		if attempt == attempts {
			return fmt.Errorf("%s: %d attempts exhausted: %w", op, attempts, lastErr)
		}
		if err := p.wait(ctx, delay); err != nil {
			return err
		}
		if next := delay * 2; next <= maxDelay {
			delay = next
		} else {
			delay = maxDelay
		}
	}
	return lastErr
}

func (p RetryPolicy) wait(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		p.Sleep(d)
		return ctx.Err()
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
