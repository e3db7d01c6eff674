package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"outreach-tracker/models"
	"outreach-tracker/services"
)

// campaignPatchRequest is a partial edit; clear_expires_at removes the deadline
type campaignPatchRequest struct {
	models.CampaignPatch
	ClearExpiresAt bool `json:"clear_expires_at"`
}

// ListCampaigns expires due campaigns and lists all of them
func (h *Handler) ListCampaigns(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	campaigns, err := h.campaigns.ListCampaigns(ctx)
	if err != nil {
		return writeError(c, err)
	}
	if campaigns == nil {
		campaigns = []models.Campaign{}
	}
	return c.JSON(fiber.Map{
		"campaigns": campaigns,
		"count":     len(campaigns),
	})
}

// GetCampaign returns one campaign
func (h *Handler) GetCampaign(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	campaign, err := h.campaigns.GetCampaign(ctx, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(campaign)
}

// CreateCampaign stores a new campaign
func (h *Handler) CreateCampaign(c *fiber.Ctx) error {
	var req services.CampaignInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	campaign, err := h.campaigns.CreateCampaign(ctx, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(campaign)
}

// UpdateCampaign applies a partial edit
func (h *Handler) UpdateCampaign(c *fiber.Ctx) error {
	var req campaignPatchRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	patch := req.CampaignPatch
	if req.ClearExpiresAt {
		patch.ExpiresAt = models.Some[*time.Time](nil)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	campaign, err := h.campaigns.UpdateCampaign(ctx, c.Params("id"), patch)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(campaign)
}

// DeleteCampaign removes a campaign
func (h *Handler) DeleteCampaign(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.campaigns.DeleteCampaign(ctx, c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
