package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CampaignStatus represents the lifecycle state of a campaign
type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusRunning   CampaignStatus = "running"
	CampaignStatusPaused    CampaignStatus = "paused"
	CampaignStatusCompleted CampaignStatus = "completed"
	CampaignStatusExpired   CampaignStatus = "expired"
)

// IsValidCampaignStatus checks if a status is one a campaign can hold
func IsValidCampaignStatus(status string) bool {
	switch CampaignStatus(status) {
	case CampaignStatusDraft, CampaignStatusRunning, CampaignStatusPaused,
		CampaignStatusCompleted, CampaignStatusExpired:
		return true
	}
	return false
}

// Campaign groups onboarded users for a time-bounded marketing push
type Campaign struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Status      CampaignStatus     `bson:"status" json:"status"`
	UserIDs     []string           `bson:"user_ids" json:"user_ids"`
	UserCount   int                `bson:"user_count" json:"user_count"` // Always len(UserIDs)
	ExpiresAt   *time.Time         `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// IsDue reports whether the campaign deadline has passed at now
func (c *Campaign) IsDue(now time.Time) bool {
	return c.ExpiresAt != nil && !c.ExpiresAt.After(now)
}

// CampaignPatch is a partial campaign edit. ExpiresAt set to a nil pointer clears the deadline.
type CampaignPatch struct {
	Name        Optional[string]         `json:"name"`
	Description Optional[string]         `json:"description"`
	Status      Optional[CampaignStatus] `json:"status"`
	UserIDs     Optional[[]string]       `json:"user_ids"`
	ExpiresAt   Optional[*time.Time]     `json:"expires_at"`
	Notes       Optional[string]         `json:"notes"`
}

// ApplyTo overlays the patch on c and keeps UserCount derived
func (p CampaignPatch) ApplyTo(c *Campaign, now time.Time) {
	if v, ok := p.Name.Get(); ok {
		c.Name = v
	}
	if v, ok := p.Description.Get(); ok {
		c.Description = v
	}
	if v, ok := p.Status.Get(); ok {
		c.Status = v
	}
	if v, ok := p.UserIDs.Get(); ok {
		c.UserIDs = v
	}
	if v, ok := p.ExpiresAt.Get(); ok {
		c.ExpiresAt = v
	}
	if v, ok := p.Notes.Get(); ok {
		c.Notes = v
	}
	c.UserCount = len(c.UserIDs)
	c.UpdatedAt = now
}
