package app

import (
	"log/slog"

	"cloudsync/database"
	"cloudsync/services"
	"cloudsync/sync"
	"cloudsync/validator"
)

// App holds all application dependencies
// This struct is the central point for dependency injection
type App struct {
	Repo        *database.Repository
	Connections *services.ConnectionService
	SyncWorker  *sync.Worker
	Validator   *validator.Validator
	Logger      *slog.Logger
}

// New creates a new App instance with all dependencies
func New(repo *database.Repository, connections *services.ConnectionService, syncWorker *sync.Worker, logger *slog.Logger) *App {
	return &App{
		Repo:        repo,
		Connections: connections,
		SyncWorker:  syncWorker,
		Validator:   validator.New(),
		Logger:      logger,
	}
}
