package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"outreach-tracker/apperr"
	"outreach-tracker/config"
)

var errNoDirectory = errors.New("account directory not configured")

// AccountProfile is what the directory knows about an account
type AccountProfile struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	FollowersCount int64  `json:"followers_count"`
	FollowingCount int64  `json:"following_count"`
	MessagingID    string `json:"messaging_id"`
	IsVerified     bool   `json:"is_verified"`
	IsPrivate      bool   `json:"is_private"`
}

// AccountDirectory looks up profile attributes of a subject as seen from a controlling account.
// Failures are returned as apperr.KindUpstreamUnavailable.
type AccountDirectory interface {
	Lookup(ctx context.Context, subjectIdentifier, controllingAccountID string) (*AccountProfile, error)
}

// GraphDirectory queries the Graph API business discovery edge
type GraphDirectory struct {
	baseURL     string
	accessToken string
	timeout     time.Duration
	client      *http.Client
	limiter     *RateLimiter
	logger      *slog.Logger
}

// NewGraphDirectory creates a directory client from configuration
func NewGraphDirectory(cfg *config.Config, logger *slog.Logger) *GraphDirectory {
	if logger == nil {
		logger = slog.Default()
	}
	return &GraphDirectory{
		baseURL:     strings.TrimRight(cfg.DirectoryBaseURL, "/"),
		accessToken: cfg.DirectoryAccessToken,
		timeout:     cfg.DirectoryTimeout,
		client:      &http.Client{},
		limiter:     NewRateLimiter(cfg.DirectoryRPM, logger),
		logger:      logger,
	}
}

type businessDiscoveryResponse struct {
	ID                string `json:"id"`
	BusinessDiscovery *struct {
		ID             string `json:"id"`
		Username       string `json:"username"`
		FollowersCount int64  `json:"followers_count"`
		FollowsCount   int64  `json:"follows_count"`
		IsVerified     bool   `json:"is_verified"`
		IsPrivate      bool   `json:"is_private"`
		MessagingID    string `json:"messaging_id"`
	} `json:"business_discovery"`
}

// Lookup fetches the subject's profile. Each call has its own timeout.
func (g *GraphDirectory) Lookup(ctx context.Context, subjectIdentifier, controllingAccountID string) (*AccountProfile, error) {
	const op = "account directory lookup"

	if subjectIdentifier == "" || controllingAccountID == "" {
		return nil, apperr.Validation(op, "subject identifier and controlling account are required")
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, apperr.Upstream(op, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	u, err := url.Parse(fmt.Sprintf("%s/%s", g.baseURL, url.PathEscape(controllingAccountID)))
	if err != nil {
		return nil, apperr.Upstream(op, fmt.Errorf("failed to parse URL: %w", err))
	}

	q := u.Query()
	q.Set("fields", fmt.Sprintf(
		"business_discovery.username(%s){id,username,followers_count,follows_count,is_verified,is_private,messaging_id}",
		subjectIdentifier))
	q.Set("access_token", g.accessToken)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, apperr.Upstream(op, fmt.Errorf("failed to create request: %w", err))
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, apperr.Upstream(op, fmt.Errorf("failed to fetch profile: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, apperr.Upstream(op, fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		g.logger.Warn("Account directory error",
			"status", resp.StatusCode,
			"body", truncate(string(body), 300),
			"subject", subjectIdentifier)
		return nil, apperr.Upstream(op, fmt.Errorf("directory returned status %d", resp.StatusCode))
	}

	var parsed businessDiscoveryResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, apperr.Upstream(op, fmt.Errorf("failed to parse profile: %w", err))
	}
	if parsed.BusinessDiscovery == nil {
		return nil, apperr.Upstream(op, fmt.Errorf("profile missing from response"))
	}

	bd := parsed.BusinessDiscovery
	profile := &AccountProfile{
		ID:             bd.ID,
		Username:       bd.Username,
		FollowersCount: max(bd.FollowersCount, 0),
		FollowingCount: max(bd.FollowsCount, 0),
		MessagingID:    bd.MessagingID,
		IsVerified:     bd.IsVerified,
		IsPrivate:      bd.IsPrivate,
	}
	if profile.Username == "" {
		profile.Username = subjectIdentifier
	}
	return profile, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
