package models

import "time"

// GrowthPoint is one recorded observation of an account's counts
type GrowthPoint struct {
	FollowersCount int64     `bson:"followers_count" json:"followers_count"`
	FollowingCount int64     `bson:"following_count" json:"following_count"`
	Timestamp      time.Time `bson:"timestamp" json:"timestamp"`
}

// SameCounts reports whether both counts match
func (p GrowthPoint) SameCounts(followers, following int64) bool {
	return p.FollowersCount == followers && p.FollowingCount == following
}

// Growth is the cumulative change since the anchor point
type Growth struct {
	FollowersGrowth int64     `bson:"followers_growth" json:"followers_growth"`
	FollowingGrowth int64     `bson:"following_growth" json:"following_growth"`
	ComputedAt      time.Time `bson:"computed_at" json:"computed_at"`
}

// InfluencerGrowth tracks follower history for an account of interest.
// GrowthHistory is append-only and its first element is the anchor.
type InfluencerGrowth struct {
	ID             string        `bson:"id" json:"id"` // Provider identifier
	Username       string        `bson:"username,omitempty" json:"username,omitempty"`
	FollowersCount int64         `bson:"followers_count" json:"followers_count"`
	FollowingCount int64         `bson:"following_count" json:"following_count"`
	IsVerified     bool          `bson:"is_verified" json:"is_verified"`
	IsPrivate      bool          `bson:"is_private" json:"is_private"`
	GrowthHistory  []GrowthPoint `bson:"growth_history" json:"growth_history"`
	LatestGrowth   *Growth       `bson:"latest_growth,omitempty" json:"latest_growth,omitempty"` // Derived cache
	CreatedAt      time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `bson:"updated_at" json:"updated_at"`
}

// Anchor returns the first recorded point
func (g *InfluencerGrowth) Anchor() (GrowthPoint, bool) {
	if len(g.GrowthHistory) == 0 {
		return GrowthPoint{}, false
	}
	return g.GrowthHistory[0], true
}

// LastPoint returns the most recent recorded point
func (g *InfluencerGrowth) LastPoint() (GrowthPoint, bool) {
	if len(g.GrowthHistory) == 0 {
		return GrowthPoint{}, false
	}
	return g.GrowthHistory[len(g.GrowthHistory)-1], true
}
