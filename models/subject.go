package models

import (
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubjectStatus is a position in the outreach funnel
type SubjectStatus string

const (
	SubjectStatusContacted SubjectStatus = "contacted"
	SubjectStatusOnboarded SubjectStatus = "onboarded"
	SubjectStatusActive    SubjectStatus = "active"
	SubjectStatusUnknown   SubjectStatus = "unknown"
)

// IsValidSubjectStatus checks if a status is one of the funnel states
func IsValidSubjectStatus(status string) bool {
	switch SubjectStatus(status) {
	case SubjectStatusContacted, SubjectStatusOnboarded, SubjectStatusActive, SubjectStatusUnknown:
		return true
	}
	return false
}

// Subject represents a contacted social account moving through the outreach funnel
type Subject struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID              string             `bson:"user_id" json:"user_id"`                                                   // Canonical ID, may be re-pointed on identity promotion
	ProviderID          string             `bson:"provider_id,omitempty" json:"provider_id,omitempty"`                       // Upstream account ID
	ProviderMessagingID string             `bson:"provider_messaging_id,omitempty" json:"provider_messaging_id,omitempty"` // Upstream inbox-scoped ID
	Name                string             `bson:"name,omitempty" json:"name,omitempty"`
	Username            string             `bson:"username,omitempty" json:"username,omitempty"`
	ProfilePicture      string             `bson:"profile_picture,omitempty" json:"profile_picture,omitempty"` // URL or data: URI
	FollowersCount      int64              `bson:"followers_count" json:"followers_count"`
	FollowingCount      int64              `bson:"following_count" json:"following_count"`
	Provider            string             `bson:"provider,omitempty" json:"provider,omitempty"` // Channel name
	Status              SubjectStatus      `bson:"status" json:"status"`
	Source              string             `bson:"source,omitempty" json:"source,omitempty"` // How the subject was first discovered
	CampaignIDs         []string           `bson:"campaign_ids,omitempty" json:"campaign_ids"`
	MessageCount        int                `bson:"message_count" json:"message_count"`
	LastContacted       *time.Time         `bson:"last_contacted,omitempty" json:"last_contacted,omitempty"`
	LastMessageSent     *time.Time         `bson:"last_message_sent,omitempty" json:"last_message_sent,omitempty"`
	CreatedAt           time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt           time.Time          `bson:"updated_at" json:"updated_at"`
}

// HasCampaign reports whether the subject references campaignID
func (s *Subject) HasCampaign(campaignID string) bool {
	return slices.Contains(s.CampaignIDs, campaignID)
}

// SubjectPatch describes a partial update of a Subject. Only present fields are written.
type SubjectPatch struct {
	UserID              Optional[string]
	ProviderID          Optional[string]
	ProviderMessagingID Optional[string]
	Name                Optional[string]
	Username            Optional[string]
	ProfilePicture      Optional[string]
	FollowersCount      Optional[int64]
	FollowingCount      Optional[int64]
	Provider            Optional[string]
	Status              Optional[SubjectStatus]
	Source              Optional[string]
	LastContacted       Optional[time.Time]
	LastMessageSent     Optional[time.Time]

	IncMessageCount int
	AddCampaignID   string

	// InsertStatus and InsertSource are used only when the patch creates a record
	// and the matching field is absent
	InsertStatus SubjectStatus
	InsertSource string
}

// ApplyTo overlays the patch on s. now stamps UpdatedAt.
func (p SubjectPatch) ApplyTo(s *Subject, now time.Time) {
	if v, ok := p.UserID.Get(); ok {
		s.UserID = v
	}
	if v, ok := p.ProviderID.Get(); ok {
		s.ProviderID = v
	}
	if v, ok := p.ProviderMessagingID.Get(); ok {
		s.ProviderMessagingID = v
	}
	if v, ok := p.Name.Get(); ok {
		s.Name = v
	}
	if v, ok := p.Username.Get(); ok {
		s.Username = v
	}
	if v, ok := p.ProfilePicture.Get(); ok {
		s.ProfilePicture = v
	}
	if v, ok := p.FollowersCount.Get(); ok {
		s.FollowersCount = v
	}
	if v, ok := p.FollowingCount.Get(); ok {
		s.FollowingCount = v
	}
	if v, ok := p.Provider.Get(); ok {
		s.Provider = v
	}
	if v, ok := p.Status.Get(); ok {
		s.Status = v
	}
	if v, ok := p.Source.Get(); ok {
		s.Source = v
	}
	if v, ok := p.LastContacted.Get(); ok {
		s.LastContacted = &v
	}
	if v, ok := p.LastMessageSent.Get(); ok {
		s.LastMessageSent = &v
	}
	s.MessageCount += p.IncMessageCount
	if p.AddCampaignID != "" && !s.HasCampaign(p.AddCampaignID) {
		s.CampaignIDs = append(s.CampaignIDs, p.AddCampaignID)
	}
	s.UpdatedAt = now
}

// NewSubjectFromPatch builds the record a patch creates when nothing matched
func NewSubjectFromPatch(userID string, p SubjectPatch, now time.Time) Subject {
	s := Subject{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Status:    p.InsertStatus,
		Source:    p.InsertSource,
		CreatedAt: now,
	}
	if s.Status == "" {
		s.Status = SubjectStatusUnknown
	}
	p.ApplyTo(&s, now)
	return s
}

// FunnelStats counts subjects per funnel status
type FunnelStats struct {
	Total     int64 `json:"total"`
	Contacted int64 `json:"contacted"`
	Onboarded int64 `json:"onboarded"`
	Active    int64 `json:"active"`
	Unknown   int64 `json:"unknown"`
}
