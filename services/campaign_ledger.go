package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"outreach-tracker/apperr"
	"outreach-tracker/models"
)

// CampaignInput is the payload for creating a campaign
type CampaignInput struct {
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Status      models.CampaignStatus `json:"status"`
	UserIDs     []string              `json:"user_ids"`
	ExpiresAt   *time.Time            `json:"expires_at"`
	Notes       string                `json:"notes"`
}

// CampaignLedger owns campaign records and their expiry
type CampaignLedger struct {
	repo   CampaignRepository
	users  *OnboardedUsers
	logger *slog.Logger
	now    func() time.Time
}

// NewCampaignLedger creates a ledger validating membership against users
func NewCampaignLedger(repo CampaignRepository, users *OnboardedUsers, logger *slog.Logger) *CampaignLedger {
	if logger == nil {
		logger = slog.Default()
	}
	return &CampaignLedger{repo: repo, users: users, logger: logger, now: time.Now}
}

// sweep expires every campaign whose deadline has passed
func (l *CampaignLedger) sweep(ctx context.Context, op string) error {
	expired, err := l.repo.ExpireDueCampaigns(ctx, l.now())
	if err != nil {
		l.logger.Error("Failed to expire campaigns", "error", err)
		return apperr.Storage(op, err)
	}
	if expired > 0 {
		l.logger.Info("Campaigns expired", "count", expired)
	}
	return nil
}

// ListCampaigns expires due campaigns, then returns all campaigns
func (l *CampaignLedger) ListCampaigns(ctx context.Context) ([]models.Campaign, error) {
	const op = "list campaigns"

	if err := l.sweep(ctx, op); err != nil {
		return nil, err
	}

	campaigns, err := l.repo.ListCampaigns(ctx)
	if err != nil {
		return nil, apperr.Storage(op, err)
	}
	return campaigns, nil
}

// GetCampaign expires due campaigns, then returns one campaign
func (l *CampaignLedger) GetCampaign(ctx context.Context, id string) (*models.Campaign, error) {
	const op = "get campaign"

	oid, err := parseCampaignID(op, id)
	if err != nil {
		return nil, err
	}
	if err := l.sweep(ctx, op); err != nil {
		return nil, err
	}

	campaign, err := l.repo.GetCampaign(ctx, oid)
	if err != nil {
		return nil, apperr.Storage(op, err)
	}
	if campaign == nil {
		return nil, apperr.NotFound(op, "campaign not found")
	}
	return campaign, nil
}

// CreateCampaign validates membership and stores a new campaign
func (l *CampaignLedger) CreateCampaign(ctx context.Context, in CampaignInput) (*models.Campaign, error) {
	const op = "create campaign"

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation(op, "name is required")
	}

	status := in.Status
	if status == "" {
		status = models.CampaignStatusDraft
	}
	if !models.IsValidCampaignStatus(string(status)) {
		return nil, apperr.Validation(op, "unknown status "+string(status))
	}

	userIDs, err := l.validateMembers(ctx, op, in.UserIDs)
	if err != nil {
		return nil, err
	}

	now := l.now()
	campaign := &models.Campaign{
		Name:        name,
		Description: in.Description,
		Status:      status,
		UserIDs:     userIDs,
		UserCount:   len(userIDs),
		ExpiresAt:   in.ExpiresAt,
		Notes:       in.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := l.repo.InsertCampaign(ctx, campaign); err != nil {
		l.logger.Error("Failed to create campaign", "name", name, "error", err)
		return nil, apperr.Storage(op, err)
	}

	l.logger.Info("Campaign created",
		"campaignID", campaign.ID.Hex(),
		"name", name,
		"userCount", campaign.UserCount)

	return campaign, nil
}

// UpdateCampaign applies a partial edit. Editing expires_at does not revive an
// expired campaign; only an explicit status change does.
func (l *CampaignLedger) UpdateCampaign(ctx context.Context, id string, patch models.CampaignPatch) (*models.Campaign, error) {
	const op = "update campaign"

	oid, err := parseCampaignID(op, id)
	if err != nil {
		return nil, err
	}

	if v, ok := patch.Name.Get(); ok {
		v = strings.TrimSpace(v)
		if v == "" {
			return nil, apperr.Validation(op, "name must not be empty")
		}
		patch.Name = models.Some(v)
	}
	if v, ok := patch.Status.Get(); ok && !models.IsValidCampaignStatus(string(v)) {
		return nil, apperr.Validation(op, "unknown status "+string(v))
	}
	if v, ok := patch.UserIDs.Get(); ok {
		userIDs, err := l.validateMembers(ctx, op, v)
		if err != nil {
			return nil, err
		}
		patch.UserIDs = models.Some(userIDs)
	}

	campaign, err := l.repo.UpdateCampaign(ctx, oid, patch, l.now())
	if err != nil {
		l.logger.Error("Failed to update campaign", "campaignID", id, "error", err)
		return nil, apperr.Storage(op, err)
	}
	if campaign == nil {
		return nil, apperr.NotFound(op, "campaign not found")
	}

	l.logger.Info("Campaign updated", "campaignID", id, "status", campaign.Status)
	return campaign, nil
}

// DeleteCampaign hard-deletes a campaign. Subject campaign references are left in place.
func (l *CampaignLedger) DeleteCampaign(ctx context.Context, id string) error {
	const op = "delete campaign"

	oid, err := parseCampaignID(op, id)
	if err != nil {
		return err
	}

	deleted, err := l.repo.DeleteCampaign(ctx, oid)
	if err != nil {
		return apperr.Storage(op, err)
	}
	if !deleted {
		return apperr.NotFound(op, "campaign not found")
	}

	l.logger.Info("Campaign deleted", "campaignID", id)
	return nil
}

// validateMembers trims and de-duplicates ids (keeping first-seen order) and
// reports every id that is not an onboarded user.
func (l *CampaignLedger) validateMembers(ctx context.Context, op string, ids []string) ([]string, error) {
	seen := make(map[string]struct{}, len(ids))
	userIDs := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		userIDs = append(userIDs, id)
	}
	if len(userIDs) == 0 {
		return nil, apperr.Validation(op, "at least one user id is required")
	}

	missing, err := l.users.MissingUserIDs(ctx, userIDs)
	if err != nil {
		return nil, apperr.Storage(op, err)
	}
	if len(missing) > 0 {
		return nil, apperr.InvalidReference(op, "user ids are not onboarded users", missing)
	}
	return userIDs, nil
}

func parseCampaignID(op, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, apperr.NotFound(op, "campaign not found")
	}
	return oid, nil
}
