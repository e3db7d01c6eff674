package services

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"outreach-tracker/apperr"
	"outreach-tracker/models"
)

// GrowthCounts are the counts observed in one poll
type GrowthCounts struct {
	FollowersCount int64 `json:"followers_count"`
	FollowingCount int64 `json:"following_count"`
}

// GrowthMetadata is the non-count profile data stored with a snapshot
type GrowthMetadata struct {
	Username   string `json:"username"`
	IsVerified bool   `json:"is_verified"`
	IsPrivate  bool   `json:"is_private"`
}

// RefreshReport summarises a RefreshAll run
type RefreshReport struct {
	Total     int      `json:"total"`
	Refreshed int      `json:"refreshed"`
	Failed    int      `json:"failed"`
	FailedIDs []string `json:"failed_ids,omitempty"`
}

// GrowthTracker owns InfluencerGrowth records
type GrowthTracker struct {
	repo        GrowthRepository
	directory   AccountDirectory
	concurrency int
	logger      *slog.Logger
	now         func() time.Time
}

// NewGrowthTracker creates a tracker. directory is only needed for TrackProfile and RefreshAll.
func NewGrowthTracker(repo GrowthRepository, directory AccountDirectory, concurrency int, logger *slog.Logger) *GrowthTracker {
	if concurrency < 1 {
		concurrency = DefaultBatchConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GrowthTracker{
		repo:        repo,
		directory:   directory,
		concurrency: concurrency,
		logger:      logger,
		now:         time.Now,
	}
}

// RecordSnapshot stores the latest counts for id. The first snapshot becomes
// the anchor; later ones extend the history only when the counts changed.
func (t *GrowthTracker) RecordSnapshot(ctx context.Context, id string, counts GrowthCounts, meta GrowthMetadata) (*models.InfluencerGrowth, error) {
	const op = "record snapshot"

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperr.Validation(op, "id is required")
	}
	if counts.FollowersCount < 0 || counts.FollowingCount < 0 {
		return nil, apperr.Validation(op, "counts must not be negative")
	}

	existing, err := t.repo.GetGrowth(ctx, id)
	if err != nil {
		return nil, apperr.Storage(op, err)
	}

	now := t.now()
	point := models.GrowthPoint{
		FollowersCount: counts.FollowersCount,
		FollowingCount: counts.FollowingCount,
		Timestamp:      now,
	}

	w := GrowthWrite{
		ID:             id,
		Username:       meta.Username,
		FollowersCount: counts.FollowersCount,
		FollowingCount: counts.FollowingCount,
		IsVerified:     meta.IsVerified,
		IsPrivate:      meta.IsPrivate,
		Now:            now,
	}
	switch last, ok := lastPoint(existing); {
	case existing == nil:
		w.Seed = &point
	case !ok || !last.SameCounts(counts.FollowersCount, counts.FollowingCount):
		w.Append = &point
	}

	saved, err := t.repo.SaveGrowth(ctx, w)
	if err != nil {
		t.logger.Error("Failed to record growth snapshot", "id", id, "error", err)
		return nil, apperr.Storage(op, err)
	}

	t.logger.Debug("Growth snapshot recorded",
		"id", id,
		"followers", counts.FollowersCount,
		"following", counts.FollowingCount,
		"historyLength", len(saved.GrowthHistory))

	return saved, nil
}

func lastPoint(g *models.InfluencerGrowth) (models.GrowthPoint, bool) {
	if g == nil {
		return models.GrowthPoint{}, false
	}
	return g.LastPoint()
}

// ComputeGrowth returns the change of the current counts against the anchor
// and caches it as latest_growth.
func (t *GrowthTracker) ComputeGrowth(ctx context.Context, id string) (models.Growth, error) {
	const op = "compute growth"

	g, err := t.repo.GetGrowth(ctx, id)
	if err != nil {
		return models.Growth{}, apperr.Storage(op, err)
	}
	if g == nil {
		return models.Growth{}, apperr.NotFound(op, "no growth record for "+id)
	}

	anchor, ok := g.Anchor()
	if !ok {
		t.logger.Error("Growth record has no history", "id", id)
		return models.Growth{}, apperr.Invariant(op, "growth history is empty for "+id)
	}

	growth := models.Growth{
		FollowersGrowth: g.FollowersCount - anchor.FollowersCount,
		FollowingGrowth: g.FollowingCount - anchor.FollowingCount,
		ComputedAt:      t.now(),
	}

	if err := t.repo.SetLatestGrowth(ctx, id, growth); err != nil {
		return models.Growth{}, apperr.Storage(op, err)
	}
	return growth, nil
}

// GetGrowth fetches the growth record for id
func (t *GrowthTracker) GetGrowth(ctx context.Context, id string) (*models.InfluencerGrowth, error) {
	const op = "get growth"

	g, err := t.repo.GetGrowth(ctx, id)
	if err != nil {
		return nil, apperr.Storage(op, err)
	}
	if g == nil {
		return nil, apperr.NotFound(op, "no growth record for "+id)
	}
	return g, nil
}

// ListTracked returns every tracked account
func (t *GrowthTracker) ListTracked(ctx context.Context) ([]models.InfluencerGrowth, error) {
	tracked, err := t.repo.ListGrowth(ctx)
	if err != nil {
		return nil, apperr.Storage("list tracked", err)
	}
	return tracked, nil
}

// TrackProfile looks identifier up in the directory, records a snapshot and
// refreshes its growth. Directory failures are returned as they are.
func (t *GrowthTracker) TrackProfile(ctx context.Context, identifier, controllingAccountID string) (*models.InfluencerGrowth, error) {
	const op = "track profile"

	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, apperr.Validation(op, "identifier is required")
	}
	if controllingAccountID == "" {
		return nil, apperr.Validation(op, "controlling account is required")
	}
	if t.directory == nil {
		return nil, apperr.Upstream(op, errNoDirectory)
	}

	profile, err := t.directory.Lookup(ctx, identifier, controllingAccountID)
	if err != nil {
		return nil, err
	}

	id := profile.ID
	if id == "" {
		id = identifier
	}

	if _, err := t.RecordSnapshot(ctx, id,
		GrowthCounts{FollowersCount: profile.FollowersCount, FollowingCount: profile.FollowingCount},
		GrowthMetadata{Username: profile.Username, IsVerified: profile.IsVerified, IsPrivate: profile.IsPrivate},
	); err != nil {
		return nil, err
	}

	if _, err := t.ComputeGrowth(ctx, id); err != nil {
		return nil, err
	}
	return t.GetGrowth(ctx, id)
}

// RefreshAll re-polls every tracked account through the directory. Failing
// accounts are reported, not fatal.
func (t *GrowthTracker) RefreshAll(ctx context.Context, controllingAccountID string) (RefreshReport, error) {
	const op = "refresh growth"

	if controllingAccountID == "" {
		return RefreshReport{}, apperr.Validation(op, "controlling account is required")
	}
	if t.directory == nil {
		return RefreshReport{}, apperr.Upstream(op, errNoDirectory)
	}

	tracked, err := t.ListTracked(ctx)
	if err != nil {
		return RefreshReport{}, err
	}

	var (
		mu     sync.Mutex
		report = RefreshReport{Total: len(tracked)}
	)

	_, err = RunBatched(ctx, tracked, t.concurrency, func(ctx context.Context, _ int, g models.InfluencerGrowth) (struct{}, error) {
		identifier := g.Username
		if identifier == "" {
			identifier = g.ID
		}

		err := t.refreshOne(ctx, g.ID, identifier, controllingAccountID)

		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			report.Failed++
			report.FailedIDs = append(report.FailedIDs, g.ID)
			t.logger.Warn("Growth refresh failed", "id", g.ID, "error", err)
			return struct{}{}, nil
		}
		report.Refreshed++
		return struct{}{}, nil
	})
	if err != nil {
		return report, err
	}

	t.logger.Info("Growth refresh finished",
		"total", report.Total,
		"refreshed", report.Refreshed,
		"failed", report.Failed)

	return report, nil
}

func (t *GrowthTracker) refreshOne(ctx context.Context, id, identifier, controllingAccountID string) error {
	profile, err := t.directory.Lookup(ctx, identifier, controllingAccountID)
	if err != nil {
		return err
	}
	if _, err := t.RecordSnapshot(ctx, id,
		GrowthCounts{FollowersCount: profile.FollowersCount, FollowingCount: profile.FollowingCount},
		GrowthMetadata{Username: profile.Username, IsVerified: profile.IsVerified, IsPrivate: profile.IsPrivate},
	); err != nil {
		return err
	}
	_, err = t.ComputeGrowth(ctx, id)
	return err
}
