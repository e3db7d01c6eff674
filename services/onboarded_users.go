package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"outreach-tracker/apperr"
	"outreach-tracker/models"
)

// OnboardedUserInput registers an opt-in. Name is kept from the first registration.
type OnboardedUserInput struct {
	UserID   string                       `json:"user_id"`
	Name     string                       `json:"name"`
	Provider string                       `json:"provider"`
	Contacts models.OnboardedUserContacts `json:"contacts"`
}

// OnboardedUsers manages the registry campaigns validate membership against
type OnboardedUsers struct {
	repo   OnboardedUserRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewOnboardedUsers creates the registry service
func NewOnboardedUsers(repo OnboardedUserRepository, logger *slog.Logger) *OnboardedUsers {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnboardedUsers{repo: repo, logger: logger, now: time.Now}
}

// RegisterOnboardedUser creates the user on first opt-in and refreshes contacts afterwards
func (o *OnboardedUsers) RegisterOnboardedUser(ctx context.Context, in OnboardedUserInput) (*models.OnboardedUser, error) {
	const op = "register onboarded user"

	userID := strings.TrimSpace(in.UserID)
	name := strings.TrimSpace(in.Name)
	if userID == "" {
		return nil, apperr.Validation(op, "user id is required")
	}
	if name == "" {
		return nil, apperr.Validation(op, "name is required")
	}

	user, err := o.repo.UpsertOnboardedUser(ctx, userID, name, in.Contacts, o.now())
	if err != nil {
		o.logger.Error("Failed to register onboarded user", "userID", userID, "error", err)
		return nil, apperr.Storage(op, err)
	}

	o.logger.Info("Onboarded user registered", "userID", userID)
	return user, nil
}

// ListOnboardedUsers returns every onboarded user
func (o *OnboardedUsers) ListOnboardedUsers(ctx context.Context) ([]models.OnboardedUser, error) {
	users, err := o.repo.ListOnboardedUsers(ctx)
	if err != nil {
		return nil, apperr.Storage("list onboarded users", err)
	}
	return users, nil
}

// MissingUserIDs returns the IDs that are not onboarded users, in input order
func (o *OnboardedUsers) MissingUserIDs(ctx context.Context, userIDs []string) ([]string, error) {
	existing, err := o.repo.ExistingUserIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, id := range userIDs {
		if _, ok := existing[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}
