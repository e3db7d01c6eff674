package handlers

import (
	"github.com/gofiber/fiber/v2"

	"outreach-tracker/services"
)

type enrichRequest struct {
	Subjects             []services.EnrichInput `json:"subjects"`
	ControllingAccountID string                 `json:"controlling_account_id"`
}

// Enrich fills follower counts and messaging IDs for a list of subjects
func (h *Handler) Enrich(c *fiber.Ctx) error {
	var req enrichRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	results, err := h.enrich.Enrich(ctx, req.Subjects, req.ControllingAccountID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"subjects": results,
		"count":    len(results),
	})
}
