package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"outreach-tracker/apperr"
)

// statusFor maps an error kind to the HTTP status returned to callers
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation, apperr.KindInvalidReference:
		return fiber.StatusBadRequest
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindUpstreamUnavailable:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// writeError renders err as {"error": ...}. Internal failures are logged and
// their details kept out of the response.
func writeError(c *fiber.Ctx, err error) error {
	kind := apperr.KindOf(err)
	status := statusFor(kind)

	if status == fiber.StatusInternalServerError {
		slog.Error("Request failed",
			"method", c.Method(),
			"path", c.Path(),
			"kind", kind,
			"error", err)
		return c.Status(status).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	body := fiber.Map{
		"error": err.Error(),
		"kind":  kind,
	}
	if kind == apperr.KindInvalidReference {
		body["invalid_ids"] = apperr.InvalidIDs(err)
	}
	if status == fiber.StatusBadGateway {
		slog.Warn("Upstream failure", "path", c.Path(), "error", err)
	}
	return c.Status(status).JSON(body)
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": message,
	})
}
