package services

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRateLimiterAllowsWithinWindow(t *testing.T) {
	limiter := NewRateLimiter(3, testLogger())
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := limiter.Wait(ctx); err != nil {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("expected calls within the limit to pass immediately, took %v", elapsed)
	}
}

func TestRateLimiterHonoursContext(t *testing.T) {
	limiter := NewRateLimiter(2, testLogger())

	for i := 0; i < 2; i++ {
		if err := limiter.Wait(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := limiter.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestRateLimiterPrunesOldRequests(t *testing.T) {
	limiter := NewRateLimiter(1, testLogger())
	limiter.lastRequests = append(limiter.lastRequests, time.Now().Add(-2*time.Minute))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := limiter.Wait(ctx); err != nil {
		t.Fatalf("expected expired request to be pruned, got %v", err)
	}
}
