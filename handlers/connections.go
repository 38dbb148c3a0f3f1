package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"cloudsync/app"
	"cloudsync/models"
	"cloudsync/services"
	"cloudsync/sync"
)

func connectionID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid connection id")
	}
	return id, nil
}

// ListConnections returns all connections, optionally scoped to a project
func ListConnections(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		projectID := int64(c.QueryInt("project_id"))

		connections, err := a.Connections.ListConnections(projectID)
		if err != nil {
			return serverErrorWithDetails(c, "Failed to fetch connections", err)
		}

		return success(c, fiber.Map{"connections": connections})
	}
}

// GetConnection returns a single connection
func GetConnection(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := connectionID(c)
		if err != nil {
			return badRequest(c, err.Error())
		}

		conn, err := a.Connections.GetConnection(id)
		if err != nil {
			if errors.Is(err, services.ErrConnectionNotFound) {
				return notFound(c, "Connection not found")
			}
			return serverErrorWithDetails(c, "Failed to fetch connection", err)
		}

		return success(c, fiber.Map{"connection": conn})
	}
}

// DeleteConnection removes a connection and its mirrored file records
func DeleteConnection(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := connectionID(c)
		if err != nil {
			return badRequest(c, err.Error())
		}

		if err := a.Connections.DeleteConnection(id); err != nil {
			if errors.Is(err, services.ErrConnectionNotFound) {
				return notFound(c, "Connection not found")
			}
			return serverErrorWithDetails(c, "Failed to delete connection", err)
		}

		return success(c, fiber.Map{"deleted": true})
	}
}

// TriggerSync starts a sync pass for a connection
func TriggerSync(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := connectionID(c)
		if err != nil {
			return badRequest(c, err.Error())
		}

		var req models.SyncRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return badRequest(c, "Invalid request body")
			}
		}

		result, err := a.Connections.TriggerSync(c.Context(), id, req.ProjectID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrConnectionNotFound):
				return notFound(c, "Connection not found")
			case errors.Is(err, sync.ErrSyncInProgress):
				return conflict(c, "Sync already in progress")
			default:
				return serverErrorWithDetails(c, "Sync failed", err)
			}
		}

		return success(c, fiber.Map{"result": result})
	}
}

// ListFiles returns the mirrored file records for a connection
func ListFiles(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := connectionID(c)
		if err != nil {
			return badRequest(c, err.Error())
		}

		files, err := a.Connections.ListFiles(id)
		if err != nil {
			if errors.Is(err, services.ErrConnectionNotFound) {
				return notFound(c, "Connection not found")
			}
			return serverErrorWithDetails(c, "Failed to fetch files", err)
		}

		return success(c, fiber.Map{"files": files})
	}
}

// DownloadFile streams a mirrored file's content from the provider
func DownloadFile(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := connectionID(c)
		if err != nil {
			return badRequest(c, err.Error())
		}

		fileID, err := strconv.ParseInt(c.Params("fileID"), 10, 64)
		if err != nil || fileID <= 0 {
			return badRequest(c, "invalid file id")
		}

		data, mimeType, err := a.Connections.DownloadFile(c.Context(), id, fileID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrConnectionNotFound):
				return notFound(c, "Connection not found")
			case errors.Is(err, services.ErrFileNotFound):
				return notFound(c, "File not found")
			default:
				return serverErrorWithDetails(c, "Failed to download file", err)
			}
		}

		if mimeType != "" {
			c.Set(fiber.HeaderContentType, mimeType)
		}
		return c.Send(data)
	}
}
