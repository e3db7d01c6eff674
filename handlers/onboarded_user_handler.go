package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"outreach-tracker/models"
	"outreach-tracker/services"
)

// RegisterOnboardedUser records an opt-in and moves the matching subject to onboarded
func (h *Handler) RegisterOnboardedUser(c *fiber.Ctx) error {
	var req services.OnboardedUserInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.onboarded.RegisterOnboardedUser(ctx, req)
	if err != nil {
		return writeError(c, err)
	}

	subject, err := h.subjects.MarkOnboarded(ctx, user.UserID, user.Name, req.Provider)
	if err != nil {
		slog.Error("Onboarded user registered but subject not updated",
			"userID", user.UserID,
			"error", err)
		return writeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"onboarded_user": user,
		"subject":        subject,
	})
}

// ListOnboardedUsers returns every onboarded user
func (h *Handler) ListOnboardedUsers(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	users, err := h.onboarded.ListOnboardedUsers(ctx)
	if err != nil {
		return writeError(c, err)
	}
	if users == nil {
		users = []models.OnboardedUser{}
	}
	return c.JSON(fiber.Map{
		"onboarded_users": users,
		"count":           len(users),
	})
}
