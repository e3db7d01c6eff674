package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"outreach-tracker/services"
)

// requestTimeout bounds the work done for one API request
const requestTimeout = 30 * time.Second

// Handler serves the operator API on top of the engine services
type Handler struct {
	subjects  *services.SubjectStore
	onboarded *services.OnboardedUsers
	campaigns *services.CampaignLedger
	growth    *services.GrowthTracker
	enrich    *services.EnrichmentPipeline
}

// New creates a Handler
func New(
	subjects *services.SubjectStore,
	onboarded *services.OnboardedUsers,
	campaigns *services.CampaignLedger,
	growth *services.GrowthTracker,
	enrich *services.EnrichmentPipeline,
) *Handler {
	return &Handler{
		subjects:  subjects,
		onboarded: onboarded,
		campaigns: campaigns,
		growth:    growth,
		enrich:    enrich,
	}
}

// RegisterRoutes mounts every API endpoint on router
func (h *Handler) RegisterRoutes(router fiber.Router) {
	subjects := router.Group("/subjects")
	subjects.Get("/", h.ListSubjects)
	subjects.Get("/stats", h.GetFunnelStats)
	subjects.Get("/:userID", h.GetSubject)
	subjects.Delete("/:userID", h.DeleteSubject)
	subjects.Post("/:userID/contact", h.ApplyContactEvent)
	subjects.Post("/:userID/onboard", h.MarkOnboarded)
	subjects.Post("/:userID/activate", h.MarkActive)

	onboarded := router.Group("/onboarded-users")
	onboarded.Get("/", h.ListOnboardedUsers)
	onboarded.Post("/", h.RegisterOnboardedUser)

	campaigns := router.Group("/campaigns")
	campaigns.Get("/", h.ListCampaigns)
	campaigns.Post("/", h.CreateCampaign)
	campaigns.Get("/:id", h.GetCampaign)
	campaigns.Patch("/:id", h.UpdateCampaign)
	campaigns.Delete("/:id", h.DeleteCampaign)

	growth := router.Group("/growth")
	growth.Get("/", h.ListGrowth)
	growth.Post("/track", h.TrackProfile)
	growth.Post("/refresh", h.RefreshGrowth)
	growth.Get("/:id", h.GetGrowth)
	growth.Get("/:id/delta", h.ComputeGrowth)
	growth.Post("/:id/snapshots", h.RecordSnapshot)

	router.Post("/enrich", h.Enrich)
}

func requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), requestTimeout)
}
