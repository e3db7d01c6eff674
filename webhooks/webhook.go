package webhooks

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"outreach-tracker/config"
	"outreach-tracker/models"
	"outreach-tracker/services"
)

const (
	// ProviderMessenger is the channel name stored on subjects seen through the webhook
	ProviderMessenger = "messenger"
	sourceWebhook     = "webhook"

	processTimeout = 30 * time.Second
)

// ContactRecorder is the part of the subject store the webhook feeds
type ContactRecorder interface {
	ApplyContactEvent(ctx context.Context, userID string, attrs services.ContactAttributes) (*models.Subject, error)
}

func RegisterRoutes(app *fiber.App, cfg *config.Config, contacts ContactRecorder) {
	webhook := app.Group("/webhook")

	// Webhook verification endpoint
	webhook.Get("/", verifyWebhook(cfg))

	// Webhook event handler
	webhook.Post("/", handleWebhookEvent(contacts))
}

// verifyWebhook answers the platform's subscription challenge
func verifyWebhook(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		mode := c.Query("hub.mode")
		token := c.Query("hub.verify_token")
		challenge := c.Query("hub.challenge")

		if mode == "subscribe" && token == cfg.VerifyToken {
			slog.Info("Webhook verified successfully")
			return c.SendString(challenge)
		}

		slog.Warn("Webhook verification failed", "mode", mode)
		return c.SendStatus(fiber.StatusForbidden)
	}
}

// handleWebhookEvent acknowledges the delivery and records contacts in the background
func handleWebhookEvent(contacts ContactRecorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body WebhookEvent
		if err := c.BodyParser(&body); err != nil {
			slog.Error("Failed to parse webhook body", "error", err)
			return c.SendStatus(fiber.StatusBadRequest)
		}

		// Only process page events
		if body.Object != "page" {
			return c.SendStatus(fiber.StatusNotFound)
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
			defer cancel()
			processWebhookEvent(ctx, contacts, body)
		}()

		// Return immediately to the platform
		return c.SendString("EVENT_RECEIVED")
	}
}

// processWebhookEvent turns messaging events into contact events. A message
// from a user counts as a contact with that user; an echo of a page message
// records when we last wrote to the recipient.
func processWebhookEvent(ctx context.Context, contacts ContactRecorder, body WebhookEvent) {
	for _, entry := range body.Entry {
		pageID := entry.ID

		for _, messaging := range entry.Messaging {
			if messaging.Message == nil {
				continue
			}

			userID := messaging.Sender.ID
			attrs := services.ContactAttributes{
				Provider: models.Some(ProviderMessenger),
				Source:   models.Some(sourceWebhook),
			}

			if messaging.Message.IsEcho {
				userID = messaging.Recipient.ID
				if messaging.Timestamp > 0 {
					attrs.LastMessageSent = models.Some(time.UnixMilli(messaging.Timestamp).UTC())
				}
			}
			if userID == "" || userID == pageID {
				continue
			}
			attrs.ProviderMessagingID = models.Some(userID)

			if _, err := contacts.ApplyContactEvent(ctx, userID, attrs); err != nil {
				slog.Error("Failed to record webhook contact",
					"pageID", pageID,
					"userID", userID,
					"mid", messaging.Message.MID,
					"error", err)
				continue
			}

			slog.Debug("Webhook contact recorded",
				"pageID", pageID,
				"userID", userID,
				"echo", messaging.Message.IsEcho)
		}
	}
}
