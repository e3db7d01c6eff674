package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"outreach-tracker/apperr"
	"outreach-tracker/models"
)

// ContactAttributes are the optional fields a contact event may carry.
// Absent fields leave the stored value untouched.
type ContactAttributes struct {
	ProviderID          models.Optional[string]    `json:"provider_id"`
	ProviderMessagingID models.Optional[string]    `json:"provider_messaging_id"`
	Name                models.Optional[string]    `json:"name"`
	Username            models.Optional[string]    `json:"username"`
	ProfilePicture      models.Optional[string]    `json:"profile_picture"`
	FollowersCount      models.Optional[int64]     `json:"followers_count"`
	FollowingCount      models.Optional[int64]     `json:"following_count"`
	Provider            models.Optional[string]    `json:"provider"`
	Source              models.Optional[string]    `json:"source"`
	LastMessageSent     models.Optional[time.Time] `json:"last_message_sent"`
}

// SubjectStore owns every mutation of Subject records
type SubjectStore struct {
	repo    SubjectRepository
	images  ImageInliner
	logger  *slog.Logger
	now     func() time.Time
	onboard identityResolver
	active  identityResolver
}

// NewSubjectStore creates a store. images may be nil to keep remote links as they are.
func NewSubjectStore(repo SubjectRepository, images ImageInliner, logger *slog.Logger) *SubjectStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SubjectStore{
		repo:    repo,
		images:  images,
		logger:  logger,
		now:     time.Now,
		onboard: newIdentityResolver(repo, true),
		active:  newIdentityResolver(repo, false),
	}
}

// ApplyContactEvent records one contact with userID, creating the subject as
// contacted on first sight.
func (s *SubjectStore) ApplyContactEvent(ctx context.Context, userID string, attrs ContactAttributes) (*models.Subject, error) {
	const op = "apply contact event"

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperr.Validation(op, "user id is required")
	}

	now := s.now()
	patch := models.SubjectPatch{
		ProviderID:          attrs.ProviderID,
		ProviderMessagingID: attrs.ProviderMessagingID,
		Name:                attrs.Name,
		Username:            attrs.Username,
		ProfilePicture:      attrs.ProfilePicture,
		FollowersCount:      attrs.FollowersCount,
		FollowingCount:      attrs.FollowingCount,
		Provider:            attrs.Provider,
		LastContacted:       models.Some(now),
		LastMessageSent:     models.Some(attrs.LastMessageSent.OrElse(now)),
		IncMessageCount:     1,
		InsertStatus:        models.SubjectStatusContacted,
		InsertSource:        attrs.Source.OrElse(""),
	}

	if pic, ok := attrs.ProfilePicture.Get(); ok && s.images != nil && IsRemoteImage(pic) {
		inlined, err := s.images.Inline(ctx, pic)
		if err != nil {
			s.logger.Warn("Failed to inline profile picture, keeping link",
				"userID", userID,
				"error", err)
		} else {
			patch.ProfilePicture = models.Some(inlined)
		}
	}

	subject, err := s.repo.UpsertSubject(ctx, userID, patch, now)
	if err != nil {
		s.logger.Error("Failed to apply contact event",
			"userID", userID,
			"error", err)
		return nil, apperr.Storage(op, err)
	}

	s.logger.Debug("Contact event applied",
		"userID", userID,
		"messageCount", subject.MessageCount,
		"status", subject.Status)

	return subject, nil
}

// MarkOnboarded resolves the subject behind userID (falling back to
// displayName within provider) and moves it to onboarded.
func (s *SubjectStore) MarkOnboarded(ctx context.Context, userID, displayName, provider string) (*models.Subject, error) {
	const op = "mark onboarded"

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperr.Validation(op, "user id is required")
	}
	displayName = strings.TrimSpace(displayName)

	patch := models.SubjectPatch{
		Status: models.Some(models.SubjectStatusOnboarded),
	}

	insert := patch
	if displayName != "" {
		insert.Name = models.Some(displayName)
	}
	if provider != "" {
		insert.Provider = models.Some(provider)
	}

	criteria := ResolveCriteria{UserID: userID, DisplayName: displayName, Provider: provider}
	return s.transition(ctx, op, s.onboard, criteria, patch, insert)
}

// MarkActive resolves the subject behind userID, moves it to active and adds
// campaignID to its campaign set.
func (s *SubjectStore) MarkActive(ctx context.Context, userID, campaignID string) (*models.Subject, error) {
	const op = "mark active"

	userID = strings.TrimSpace(userID)
	campaignID = strings.TrimSpace(campaignID)
	if userID == "" {
		return nil, apperr.Validation(op, "user id is required")
	}
	if campaignID == "" {
		return nil, apperr.Validation(op, "campaign id is required")
	}

	patch := models.SubjectPatch{
		Status:        models.Some(models.SubjectStatusActive),
		AddCampaignID: campaignID,
	}

	return s.transition(ctx, op, s.active, ResolveCriteria{UserID: userID}, patch, patch)
}

// transition applies patch to the resolved subject, promoting userID to its
// canonical ID, or creates a new subject from insert when nothing resolves.
func (s *SubjectStore) transition(ctx context.Context, op string, resolver identityResolver, c ResolveCriteria, patch, insert models.SubjectPatch) (*models.Subject, error) {
	now := s.now()

	match, matchedBy, err := resolver.Resolve(ctx, c)
	if err != nil {
		return nil, apperr.Storage(op, err)
	}

	if match != nil {
		patch.UserID = models.Some(c.UserID)
		if match.Name == "" {
			if name, ok := insert.Name.Get(); ok {
				patch.Name = models.Some(name)
			}
		}

		updated, err := s.repo.UpdateSubject(ctx, match.ID, patch, now)
		if err != nil {
			return nil, apperr.Storage(op, err)
		}
		if updated != nil {
			if match.UserID != c.UserID {
				s.logger.Info("Subject identity promoted",
					"op", op,
					"previousUserID", match.UserID,
					"userID", c.UserID,
					"matchedBy", matchedBy)
			}
			return updated, nil
		}
		// Deleted between resolve and update; fall through and create it.
	}

	created, err := s.repo.UpsertSubject(ctx, c.UserID, insert, now)
	if err != nil {
		return nil, apperr.Storage(op, err)
	}
	s.logger.Info("Subject created on status transition",
		"op", op,
		"userID", c.UserID,
		"status", created.Status)
	return created, nil
}

// GetSubject fetches a subject by canonical ID
func (s *SubjectStore) GetSubject(ctx context.Context, userID string) (*models.Subject, error) {
	const op = "get subject"

	subject, err := s.repo.FindSubject(ctx, SubjectKeyUserID, userID)
	if err != nil {
		return nil, apperr.Storage(op, err)
	}
	if subject == nil {
		return nil, apperr.NotFound(op, "subject not found")
	}
	return subject, nil
}

// ListSubjects returns a page of subjects and the total number matching filter
func (s *SubjectStore) ListSubjects(ctx context.Context, filter SubjectFilter) ([]models.Subject, int64, error) {
	const op = "list subjects"

	if filter.Status != "" && !models.IsValidSubjectStatus(string(filter.Status)) {
		return nil, 0, apperr.Validation(op, "unknown status "+string(filter.Status))
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 200 {
		filter.Limit = 200
	}
	if filter.Skip < 0 {
		filter.Skip = 0
	}

	subjects, total, err := s.repo.ListSubjects(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Storage(op, err)
	}
	if subjects == nil {
		subjects = []models.Subject{}
	}
	return subjects, total, nil
}

// FunnelStats counts subjects at each funnel stage
func (s *SubjectStore) FunnelStats(ctx context.Context) (models.FunnelStats, error) {
	counts, err := s.repo.CountSubjectsByStatus(ctx)
	if err != nil {
		return models.FunnelStats{}, apperr.Storage("funnel stats", err)
	}

	stats := models.FunnelStats{
		Contacted: counts[models.SubjectStatusContacted],
		Onboarded: counts[models.SubjectStatusOnboarded],
		Active:    counts[models.SubjectStatusActive],
		Unknown:   counts[models.SubjectStatusUnknown],
	}
	for _, n := range counts {
		stats.Total += n
	}
	return stats, nil
}

// DeleteSubject removes a subject on explicit operator request
func (s *SubjectStore) DeleteSubject(ctx context.Context, userID string) error {
	const op = "delete subject"

	deleted, err := s.repo.DeleteSubject(ctx, userID)
	if err != nil {
		return apperr.Storage(op, err)
	}
	if !deleted {
		return apperr.NotFound(op, "subject not found")
	}
	s.logger.Info("Subject deleted", "userID", userID)
	return nil
}
