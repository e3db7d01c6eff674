package services

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// RateLimiter implements a sliding one-minute window limiter
type RateLimiter struct {
	mu                sync.Mutex
	requestsPerMinute int
	lastRequests      []time.Time
	logger            *slog.Logger
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(rpm int, logger *slog.Logger) *RateLimiter {
	if rpm < 1 {
		rpm = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RateLimiter{
		requestsPerMinute: rpm,
		lastRequests:      make([]time.Time, 0, rpm),
		logger:            logger,
	}
}

// Wait blocks until a request can be made within rate limits
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	r.prune(now)

	// Check if we need to wait
	if len(r.lastRequests) >= r.requestsPerMinute {
		waitDuration := r.lastRequests[0].Add(time.Minute).Sub(now)

		if waitDuration > 0 {
			r.logger.Info("Rate limit reached, waiting...",
				"waitSeconds", waitDuration.Seconds(),
				"rpm", r.requestsPerMinute,
			)

			timer := time.NewTimer(waitDuration)
			defer timer.Stop()

			select {
			case <-timer.C:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		now = time.Now()
		r.prune(now)
	}

	r.lastRequests = append(r.lastRequests, now)
	return nil
}

// prune drops requests that left the window
func (r *RateLimiter) prune(now time.Time) {
	windowStart := now.Add(-time.Minute)
	valid := r.lastRequests[:0]
	for _, t := range r.lastRequests {
		if t.After(windowStart) {
			valid = append(valid, t)
		}
	}
	r.lastRequests = valid
}
