package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"cloudsync/app"
	"cloudsync/models"
	"cloudsync/providers"
	"cloudsync/services"
)

// StartAuth redirects the user to the provider's consent screen
func StartAuth(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		providerID := c.Params("provider")

		req := models.StartAuthRequest{
			ProjectID:    int64(c.QueryInt("project_id")),
			RootFolderID: c.Query("root_folder_id"),
		}
		if err := a.Validator.Validate(&req); err != nil {
			return badRequest(c, err.Error())
		}

		authURL, err := a.Connections.StartAuthorization(providerID, req.ProjectID, req.RootFolderID)
		if err != nil {
			var confErr *providers.ConfigurationError
			switch {
			case errors.Is(err, providers.ErrUnknownProvider):
				return notFound(c, "Unknown provider")
			case errors.As(err, &confErr):
				return serverErrorWithDetails(c, "Provider is not configured", err)
			default:
				return serverErrorWithDetails(c, "Failed to start authorization", err)
			}
		}

		return c.Redirect(authURL, fiber.StatusTemporaryRedirect)
	}
}

// AuthCallback completes the OAuth flow after the provider redirects back
func AuthCallback(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		providerID := c.Params("provider")

		if authErr := c.Query("error"); authErr != "" {
			return badRequest(c, "Authorization denied: "+authErr)
		}

		state, code := c.Query("state"), c.Query("code")
		if state == "" || code == "" {
			return badRequest(c, "state and code are required")
		}

		conn, err := a.Connections.CompleteAuthorization(c.Context(), providerID, state, code)
		if err != nil {
			var exchErr *providers.TokenExchangeError
			switch {
			case errors.Is(err, services.ErrInvalidState):
				return badRequest(c, "Invalid or expired authorization state")
			case errors.Is(err, providers.ErrUnknownProvider):
				return notFound(c, "Unknown provider")
			case errors.As(err, &exchErr):
				return badRequest(c, "Authorization code exchange failed")
			default:
				return serverErrorWithDetails(c, "Failed to complete authorization", err)
			}
		}

		return created(c, fiber.Map{"connection": conn})
	}
}
