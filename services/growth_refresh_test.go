package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countingRefresher struct {
	calls atomic.Int32
	fail  bool
}

func (c *countingRefresher) RefreshAll(_ context.Context, controllingAccountID string) (RefreshReport, error) {
	c.calls.Add(1)
	if c.fail {
		return RefreshReport{}, errors.New("directory down")
	}
	return RefreshReport{Total: 1, Refreshed: 1}, nil
}

func TestStartGrowthRefreshRunsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	refresher := &countingRefresher{}

	done := StartGrowthRefresh(ctx, refresher, "page-1", 5*time.Millisecond, testLogger())

	deadline := time.After(2 * time.Second)
	for refresher.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 2 refreshes, got %d", refresher.calls.Load())
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected scheduler to stop after cancel")
	}
}

func TestStartGrowthRefreshSurvivesFailures(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	refresher := &countingRefresher{fail: true}

	StartGrowthRefresh(ctx, refresher, "page-1", 5*time.Millisecond, testLogger())

	deadline := time.After(2 * time.Second)
	for refresher.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected the loop to keep running after errors, got %d calls", refresher.calls.Load())
		case <-time.After(time.Millisecond):
		}
	}
}
