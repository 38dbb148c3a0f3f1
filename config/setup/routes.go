package setup

import (
	"github.com/gofiber/fiber/v2"

	"cloudsync/app"
	"cloudsync/handlers"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(fiberApp *fiber.App, application *app.App) {
	fiberApp.Get("/health", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"status": "ok"}) })

	// OAuth flow
	fiberApp.Get("/auth/:provider", handlers.StartAuth(application))
	fiberApp.Get("/auth/:provider/callback", handlers.AuthCallback(application))

	// API routes
	api := fiberApp.Group("/api")
	api.Get("/providers", handlers.ListProviders(application))
	api.Get("/connections", handlers.ListConnections(application))
	api.Get("/connections/:id", handlers.GetConnection(application))
	api.Delete("/connections/:id", handlers.DeleteConnection(application))
	api.Post("/connections/:id/sync", handlers.TriggerSync(application))
	api.Get("/connections/:id/files", handlers.ListFiles(application))
	api.Get("/connections/:id/files/:fileID/download", handlers.DownloadFile(application))
}
