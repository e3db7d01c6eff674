package handlers

import (
	"github.com/gofiber/fiber/v2"

	"outreach-tracker/models"
	"outreach-tracker/services"
)

type onboardRequest struct {
	DisplayName string `json:"display_name"`
	Provider    string `json:"provider"`
}

type activateRequest struct {
	CampaignID string `json:"campaign_id"`
}

// ApplyContactEvent records a contact with the subject in the path
func (h *Handler) ApplyContactEvent(c *fiber.Ctx) error {
	var attrs services.ContactAttributes
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&attrs); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	subject, err := h.subjects.ApplyContactEvent(ctx, c.Params("userID"), attrs)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(subject)
}

// MarkOnboarded moves the subject in the path to onboarded
func (h *Handler) MarkOnboarded(c *fiber.Ctx) error {
	var req onboardRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	subject, err := h.subjects.MarkOnboarded(ctx, c.Params("userID"), req.DisplayName, req.Provider)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(subject)
}

// MarkActive moves the subject in the path to active for a campaign
func (h *Handler) MarkActive(c *fiber.Ctx) error {
	var req activateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	subject, err := h.subjects.MarkActive(ctx, c.Params("userID"), req.CampaignID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(subject)
}

// GetSubject returns one subject by canonical ID
func (h *Handler) GetSubject(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	subject, err := h.subjects.GetSubject(ctx, c.Params("userID"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(subject)
}

// ListSubjects returns a filtered, paginated subject list
func (h *Handler) ListSubjects(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 50)
	if limit < 1 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	filter := services.SubjectFilter{
		Status:     models.SubjectStatus(c.Query("status")),
		Provider:   c.Query("provider"),
		CampaignID: c.Query("campaign_id"),
		Limit:      limit,
		Skip:       (page - 1) * limit,
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	subjects, total, err := h.subjects.ListSubjects(ctx, filter)
	if err != nil {
		return writeError(c, err)
	}

	totalPages := (int(total) + limit - 1) / limit
	return c.JSON(fiber.Map{
		"subjects": subjects,
		"pagination": fiber.Map{
			"page":        page,
			"limit":       limit,
			"total":       total,
			"total_pages": totalPages,
			"has_more":    page < totalPages,
		},
	})
}

// GetFunnelStats returns subject counts per status
func (h *Handler) GetFunnelStats(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	stats, err := h.subjects.FunnelStats(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(stats)
}

// DeleteSubject removes the subject in the path
func (h *Handler) DeleteSubject(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.subjects.DeleteSubject(ctx, c.Params("userID")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
