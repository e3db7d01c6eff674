package services

import (
	"context"
	"fmt"

	"outreach-tracker/models"
)

// ResolveCriteria is what an event tells us about the account it refers to.
// UserID is compared against every identifying key.
type ResolveCriteria struct {
	UserID      string
	DisplayName string
	Provider    string
}

// Match names for logging which strategy found a subject
const (
	MatchedByUserID      = "user_id"
	MatchedByProviderID  = "provider_id"
	MatchedByMessagingID = "provider_messaging_id"
	MatchedByDisplayName = "display_name"
)

// resolveStrategy finds at most one subject for the criteria, or nil
type resolveStrategy struct {
	name    string
	resolve func(ctx context.Context, c ResolveCriteria) (*models.Subject, error)
}

// identityResolver tries strategies in order; the first hit wins
type identityResolver struct {
	strategies []resolveStrategy
}

func keyStrategy(repo SubjectRepository, key SubjectKey, name string) resolveStrategy {
	return resolveStrategy{
		name: name,
		resolve: func(ctx context.Context, c ResolveCriteria) (*models.Subject, error) {
			if c.UserID == "" {
				return nil, nil
			}
			return repo.FindSubject(ctx, key, c.UserID)
		},
	}
}

// displayNameStrategy is a heuristic fallback. When several subjects match, the
// first in natural store order wins; there is no further tie-break.
func displayNameStrategy(repo SubjectRepository) resolveStrategy {
	return resolveStrategy{
		name: MatchedByDisplayName,
		resolve: func(ctx context.Context, c ResolveCriteria) (*models.Subject, error) {
			if normalizeName(c.DisplayName) == "" {
				return nil, nil
			}
			candidates, err := repo.FindSubjectsByProvider(ctx, c.Provider)
			if err != nil {
				return nil, err
			}
			for i := range candidates {
				if nameMatches(candidates[i].Name, c.DisplayName) {
					return &candidates[i], nil
				}
			}
			return nil, nil
		},
	}
}

// newIdentityResolver builds the canonical → provider → messaging chain,
// optionally followed by display-name matching.
func newIdentityResolver(repo SubjectRepository, withDisplayName bool) identityResolver {
	strategies := []resolveStrategy{
		keyStrategy(repo, SubjectKeyUserID, MatchedByUserID),
		keyStrategy(repo, SubjectKeyProviderID, MatchedByProviderID),
		keyStrategy(repo, SubjectKeyMessagingID, MatchedByMessagingID),
	}
	if withDisplayName {
		strategies = append(strategies, displayNameStrategy(repo))
	}
	return identityResolver{strategies: strategies}
}

// Resolve returns the matched subject and the strategy that found it.
// A nil subject means no strategy matched.
func (r identityResolver) Resolve(ctx context.Context, c ResolveCriteria) (*models.Subject, string, error) {
	for _, s := range r.strategies {
		subject, err := s.resolve(ctx, c)
		if err != nil {
			return nil, "", fmt.Errorf("resolve by %s: %w", s.name, err)
		}
		if subject != nil {
			return subject, s.name, nil
		}
	}
	return nil, "", nil
}
