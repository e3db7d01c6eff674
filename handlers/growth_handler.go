package handlers

import (
	"github.com/gofiber/fiber/v2"

	"outreach-tracker/models"
	"outreach-tracker/services"
)

type snapshotRequest struct {
	FollowersCount int64  `json:"followers_count"`
	FollowingCount int64  `json:"following_count"`
	Username       string `json:"username"`
	IsVerified     bool   `json:"is_verified"`
	IsPrivate      bool   `json:"is_private"`
}

type trackRequest struct {
	Identifier           string `json:"identifier"`
	ControllingAccountID string `json:"controlling_account_id"`
}

type refreshRequest struct {
	ControllingAccountID string `json:"controlling_account_id"`
}

// RecordSnapshot stores counts observed for the account in the path
func (h *Handler) RecordSnapshot(c *fiber.Ctx) error {
	var req snapshotRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	record, err := h.growth.RecordSnapshot(ctx, c.Params("id"),
		services.GrowthCounts{FollowersCount: req.FollowersCount, FollowingCount: req.FollowingCount},
		services.GrowthMetadata{Username: req.Username, IsVerified: req.IsVerified, IsPrivate: req.IsPrivate},
	)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(record)
}

// ComputeGrowth returns the change since the first snapshot
func (h *Handler) ComputeGrowth(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	growth, err := h.growth.ComputeGrowth(ctx, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(growth)
}

// GetGrowth returns the full growth record
func (h *Handler) GetGrowth(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	record, err := h.growth.GetGrowth(ctx, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(record)
}

// ListGrowth returns every tracked account
func (h *Handler) ListGrowth(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	tracked, err := h.growth.ListTracked(ctx)
	if err != nil {
		return writeError(c, err)
	}
	if tracked == nil {
		tracked = []models.InfluencerGrowth{}
	}
	return c.JSON(fiber.Map{
		"tracked": tracked,
		"count":   len(tracked),
	})
}

// TrackProfile looks an account up and records its current counts
func (h *Handler) TrackProfile(c *fiber.Ctx) error {
	var req trackRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	record, err := h.growth.TrackProfile(ctx, req.Identifier, req.ControllingAccountID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(record)
}

// RefreshGrowth re-polls every tracked account
func (h *Handler) RefreshGrowth(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	report, err := h.growth.RefreshAll(ctx, req.ControllingAccountID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(report)
}
