package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"outreach-tracker/models"
)

// SubjectKey names a field a subject can be looked up by
type SubjectKey string

const (
	SubjectKeyUserID      SubjectKey = "user_id"
	SubjectKeyProviderID  SubjectKey = "provider_id"
	SubjectKeyMessagingID SubjectKey = "provider_messaging_id"
)

// SubjectFilter narrows subject listings. Zero values do not filter.
type SubjectFilter struct {
	Status     models.SubjectStatus
	Provider   string
	CampaignID string
	Limit      int
	Skip       int
}

// SubjectRepository persists Subject records. Lookups return nil, nil when nothing matches.
type SubjectRepository interface {
	FindSubject(ctx context.Context, key SubjectKey, value string) (*models.Subject, error)
	// FindSubjectsByProvider returns subjects of a channel in natural store order; empty provider means all
	FindSubjectsByProvider(ctx context.Context, provider string) ([]models.Subject, error)
	// UpsertSubject applies patch to the record with user_id, creating it when absent
	UpsertSubject(ctx context.Context, userID string, patch models.SubjectPatch, now time.Time) (*models.Subject, error)
	// UpdateSubject applies patch to an existing record by storage ID
	UpdateSubject(ctx context.Context, id primitive.ObjectID, patch models.SubjectPatch, now time.Time) (*models.Subject, error)
	ListSubjects(ctx context.Context, filter SubjectFilter) ([]models.Subject, int64, error)
	CountSubjectsByStatus(ctx context.Context) (map[models.SubjectStatus]int64, error)
	DeleteSubject(ctx context.Context, userID string) (bool, error)
}

// OnboardedUserRepository persists OnboardedUser records
type OnboardedUserRepository interface {
	// UpsertOnboardedUser writes name and user_id only on insert, contacts always
	UpsertOnboardedUser(ctx context.Context, userID, name string, contacts models.OnboardedUserContacts, now time.Time) (*models.OnboardedUser, error)
	ExistingUserIDs(ctx context.Context, userIDs []string) (map[string]struct{}, error)
	ListOnboardedUsers(ctx context.Context) ([]models.OnboardedUser, error)
}

// CampaignRepository persists Campaign records. Get/Update return nil, nil when absent.
type CampaignRepository interface {
	// ExpireDueCampaigns moves every due, non-expired campaign to expired
	ExpireDueCampaigns(ctx context.Context, now time.Time) (int64, error)
	ListCampaigns(ctx context.Context) ([]models.Campaign, error)
	GetCampaign(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error)
	InsertCampaign(ctx context.Context, campaign *models.Campaign) error
	UpdateCampaign(ctx context.Context, id primitive.ObjectID, patch models.CampaignPatch, now time.Time) (*models.Campaign, error)
	DeleteCampaign(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// GrowthWrite is a single atomic growth upsert.
// Seed is written only when the record is created; Append is pushed to the history.
type GrowthWrite struct {
	ID             string
	Username       string
	FollowersCount int64
	FollowingCount int64
	IsVerified     bool
	IsPrivate      bool
	Seed           *models.GrowthPoint
	Append         *models.GrowthPoint
	Now            time.Time
}

// GrowthRepository persists InfluencerGrowth records
type GrowthRepository interface {
	GetGrowth(ctx context.Context, id string) (*models.InfluencerGrowth, error)
	SaveGrowth(ctx context.Context, w GrowthWrite) (*models.InfluencerGrowth, error)
	SetLatestGrowth(ctx context.Context, id string, growth models.Growth) error
	ListGrowth(ctx context.Context) ([]models.InfluencerGrowth, error)
}
