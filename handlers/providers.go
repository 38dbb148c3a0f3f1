package handlers

import (
	"cloudsync/app"

	"github.com/gofiber/fiber/v2"
)

// ListProviders returns the supported cloud storage providers
func ListProviders(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return success(c, fiber.Map{"providers": a.Connections.ListProviders()})
	}
}
