package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"outreach-tracker/config"
	"outreach-tracker/handlers"
	"outreach-tracker/middleware"
	"outreach-tracker/services"
	"outreach-tracker/webhooks"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	// Initialize structured logger
	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})
	log := slog.New(logHandler)
	slog.SetDefault(log)

	// Initialize MongoDB
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := services.InitMongoDB(ctx, cfg.MongoURI)
	if err != nil {
		slog.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer db.Disconnect(context.Background())

	store := services.NewMongoStore(db, cfg.DatabaseName)
	if err := store.CreateIndexes(ctx); err != nil {
		slog.Error("Failed to create indexes", "error", err)
		// Continue anyway - the app can still work without indexes
	}

	// Account directory, optionally behind the Redis profile cache
	var directory services.AccountDirectory = services.NewGraphDirectory(cfg, log)
	if cfg.RedisURL != "" {
		cache, err := services.NewRedisProfileCache(ctx, cfg.RedisURL)
		if err != nil {
			slog.Error("Failed to connect to Redis, profile cache disabled", "error", err)
		} else {
			defer cache.Close()
			directory = services.NewCachedDirectory(directory, cache, cfg.ProfileCacheTTL, log)
			slog.Info("Profile cache enabled", "ttl", cfg.ProfileCacheTTL)
		}
	}

	// Initialize services
	images := services.NewHTTPImageInliner(cfg.ImageFetchTimeout, cfg.ImageMaxBytes)
	subjects := services.NewSubjectStore(store, images, log)
	onboarded := services.NewOnboardedUsers(store, log)
	campaigns := services.NewCampaignLedger(store, onboarded, log)
	growth := services.NewGrowthTracker(store, directory, cfg.EnrichConcurrency, log)
	enrich := services.NewEnrichmentPipeline(directory, cfg.EnrichConcurrency, log)

	// Periodic growth refresh
	bgCtx, cancelBackground := context.WithCancel(context.Background())
	defer cancelBackground()
	if cfg.GrowthRefreshInterval > 0 {
		services.StartGrowthRefresh(bgCtx, growth, cfg.GrowthControllingAccount, cfg.GrowthRefreshInterval, log)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			slog.Error("Request error", "error", err, "status", code)
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.CORSOrigins, ", "),
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, X-Requested-With, " + middleware.OperatorKeyHeader,
		MaxAge:       86400, // 24 hours
	}))

	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${locals:requestid} ${status} - ${method} ${path}\n",
	}))

	// Register webhook routes
	webhooks.RegisterRoutes(app, cfg, subjects)

	// Operator API
	api := app.Group("/api", middleware.RequireOperator(cfg.OperatorKeyHash))
	handlers.New(subjects, onboarded, campaigns, growth, enrich).RegisterRoutes(api)

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "outreach-tracker",
		})
	})

	// Shut down cleanly on SIGINT/SIGTERM
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			slog.Error("Server shutdown failed", "error", err)
		}
	}()

	slog.Info("Server starting", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("Server failed to start", "error", err)
		os.Exit(1)
	}
}
