package services

import (
	"context"
	"log/slog"
	"time"
)

// growthRefresher is the part of GrowthTracker the scheduler drives
type growthRefresher interface {
	RefreshAll(ctx context.Context, controllingAccountID string) (RefreshReport, error)
}

// StartGrowthRefresh starts a background goroutine that re-polls every tracked
// account each interval until ctx is cancelled. The returned channel is closed
// once the goroutine has stopped.
func StartGrowthRefresh(ctx context.Context, tracker growthRefresher, controllingAccountID string, interval time.Duration, logger *slog.Logger) <-chan struct{} {
	if logger == nil {
		logger = slog.Default()
	}
	done := make(chan struct{})

	go func() {
		defer close(done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				logger.Info("Growth refresh stopped")
				return
			case <-ticker.C:
				runCtx, cancel := context.WithTimeout(ctx, interval)
				report, err := tracker.RefreshAll(runCtx, controllingAccountID)
				cancel()
				if err != nil {
					logger.Error("Scheduled growth refresh failed", "error", err)
					continue
				}
				if report.Failed > 0 {
					logger.Warn("Scheduled growth refresh had failures",
						"failed", report.Failed,
						"failedIDs", report.FailedIDs)
				}
			}
		}
	}()

	logger.Info("Growth refresh started",
		"interval", interval.String(),
		"controllingAccountID", controllingAccountID)
	return done
}
