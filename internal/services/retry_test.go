package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"platen/internal/services"
)

func instantPolicy(attempts int) services.RetryPolicy {
	policy := services.NewRetryPolicy(attempts, time.Millisecond, 4*time.Millisecond)
	policy.Sleep = func(time.Duration) {}
	return policy
}

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	policy := instantPolicy(4)

	calls := 0
	err := policy.Do(context.Background(), "upload", nil, func() error {
		calls++
		if calls < 3 {
			return services.Wrap(services.ErrStorage, "store", "upload", "", errors.New("flaky"))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	policy := instantPolicy(5)

	calls := 0
	wrapped := services.Wrap(services.ErrValidation, "validate", "snapshot", "", nil)
	err := policy.Do(context.Background(), "validate", nil, func() error {
		calls++
		return wrapped
	})
	if calls != 1 {
		t.Fatalf("non-retryable error must not be retried, got %d calls", calls)
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected original error, got %v", err)
	}
	if strings.Contains(err.Error(), "attempts exhausted") {
		t.Fatalf("non-retryable failure must not be reported as exhaustion: %v", err)
	}
}

func TestDoExhaustsAttempts(t *testing.T) {
	policy := instantPolicy(3)

	calls := 0
	err := policy.Do(context.Background(), "upload", nil, func() error {
		calls++
		return services.Wrap(services.ErrStorage, "store", "upload", "", nil)
	})
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
	if err == nil || !strings.Contains(err.Error(), "3 attempts exhausted") {
		t.Fatalf("expected exhaustion error, got %v", err)
	}
	if !errors.Is(err, services.ErrStorage) {
		t.Fatal("exhaustion must preserve the underlying marker")
	}
}

func TestDoBackoffDoublesAndCaps(t *testing.T) {
	policy := services.NewRetryPolicy(5, 10*time.Millisecond, 25*time.Millisecond)
	var waits []time.Duration
	policy.Sleep = func(d time.Duration) { waits = append(waits, d) }

	_ = policy.Do(context.Background(), "upload", nil, func() error {
		return services.ErrTransient
	})

	want := []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 25 * time.Millisecond, 25 * time.Millisecond}
	if len(waits) != len(want) {
		t.Fatalf("expected %d waits, got %v", len(want), waits)
	}
	for i := range want {
		if waits[i] != want[i] {
			t.Fatalf("wait %d = %v, want %v", i, waits[i], want[i])
		}
	}
}

func TestDoRespectsCancellation(t *testing.T) {
	policy := services.NewRetryPolicy(5, time.Millisecond, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	policy.Sleep = func(time.Duration) { cancel() }

	calls := 0
	err := policy.Do(ctx, "upload", nil, func() error {
		calls++
		return services.ErrTransient
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single call before cancellation, got %d", calls)
	}
}

func TestDoCustomRetryablePredicate(t *testing.T) {
	policy := instantPolicy(3)
	sentinel := errors.New("try again")

	calls := 0
	err := policy.Do(context.Background(), "op", func(err error) bool {
		return errors.Is(err, sentinel)
	}, func() error {
		calls++
		if calls < 2 {
			return sentinel
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Fatalf("custom predicate: err=%v calls=%d", err, calls)
	}
}
