package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// EnrichInput is a subject or chat participant to enrich
type EnrichInput struct {
	UserID         string `json:"user_id"`
	Username       string `json:"username,omitempty"`
	Name           string `json:"name,omitempty"`
	FollowersCount int64  `json:"followers_count"`
	FollowingCount int64  `json:"following_count"`
	MessagingID    string `json:"messaging_id,omitempty"`
}

// identifier is what the directory is queried with
func (in EnrichInput) identifier() string {
	if in.Username != "" {
		return in.Username
	}
	return in.UserID
}

// EnrichedSubject is an input with directory data applied.
// Enriched is false when the counts did not come from the directory.
type EnrichedSubject struct {
	UserID         string `json:"user_id"`
	Username       string `json:"username,omitempty"`
	Name           string `json:"name,omitempty"`
	FollowersCount int64  `json:"followers_count"`
	FollowingCount int64  `json:"following_count"`
	MessagingID    string `json:"messaging_id"`
	Enriched       bool   `json:"enriched"`
}

// EnrichmentPipeline fans directory lookups out over a list with bounded concurrency
type EnrichmentPipeline struct {
	directory   AccountDirectory
	concurrency int
	logger      *slog.Logger
}

// NewEnrichmentPipeline creates a pipeline; concurrency < 1 uses DefaultBatchConcurrency
func NewEnrichmentPipeline(directory AccountDirectory, concurrency int, logger *slog.Logger) *EnrichmentPipeline {
	if concurrency < 1 {
		concurrency = DefaultBatchConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EnrichmentPipeline{directory: directory, concurrency: concurrency, logger: logger}
}

// Enrich returns one result per input, in input order. Without a controlling
// account no lookups are made and input counts are passed through. A failed
// lookup yields zero counts and an empty messaging ID for that item only.
func (p *EnrichmentPipeline) Enrich(ctx context.Context, subjects []EnrichInput, controllingAccountID string) ([]EnrichedSubject, error) {
	if controllingAccountID == "" {
		out := make([]EnrichedSubject, len(subjects))
		for i, in := range subjects {
			out[i] = EnrichedSubject{
				UserID:         in.UserID,
				Username:       in.Username,
				Name:           in.Name,
				FollowersCount: in.FollowersCount,
				FollowingCount: in.FollowingCount,
				MessagingID:    in.MessagingID,
			}
		}
		return out, nil
	}

	batchID := uuid.NewString()
	logger := p.logger.With("batchID", batchID)

	var failed int
	failures := make([]bool, len(subjects))

	results, err := RunBatched(ctx, subjects, p.concurrency, func(ctx context.Context, i int, in EnrichInput) (EnrichedSubject, error) {
		out := EnrichedSubject{
			UserID:   in.UserID,
			Username: in.Username,
			Name:     in.Name,
		}

		id := in.identifier()
		if id == "" {
			failures[i] = true
			return out, nil
		}

		profile, err := p.directory.Lookup(ctx, id, controllingAccountID)
		if err != nil {
			failures[i] = true
			logger.Warn("Enrichment lookup failed, using zero values",
				"userID", in.UserID,
				"identifier", id,
				"error", err)
			return out, nil
		}

		out.FollowersCount = profile.FollowersCount
		out.FollowingCount = profile.FollowingCount
		out.MessagingID = profile.MessagingID
		out.Enriched = true
		return out, nil
	})
	if err != nil {
		return nil, fmt.Errorf("enrich: %w", err)
	}

	for _, f := range failures {
		if f {
			failed++
		}
	}
	logger.Info("Enrichment finished",
		"count", len(results),
		"failed", failed,
		"concurrency", p.concurrency)

	return results, nil
}
