package setup

import (
	"log/slog"
	"net/http"
	"time"

	"cloudsync/app"
	"cloudsync/config"
	"cloudsync/database"
	"cloudsync/models"
	"cloudsync/providers"
	"cloudsync/services"
	"cloudsync/sync"
)

// InitDatabase initializes the SQLite database and runs migrations
func InitDatabase(dbPath string, logger *slog.Logger) (*database.DB, error) {
	db, err := database.New(dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("database initialized", "path", dbPath)
	return db, nil
}

// InitApp initializes the application with all dependencies
func InitApp(db *database.DB, logger *slog.Logger) *app.App {
	// Create repository
	repo := database.NewRepository(db)

	registry := providers.NewRegistry()

	// One shared HTTP client for all provider API calls
	httpClient := &http.Client{Timeout: 30 * time.Second}

	newClient := func(conn *models.Connection) (providers.Client, error) {
		return providers.NewClient(conn, registry, repo, httpClient)
	}

	engine := sync.NewEngine(repo, sync.ClientFactory(newClient), logger)

	// Start background worker for periodic re-sync
	syncWorker := sync.NewWorker(engine, repo, logger)
	syncWorker.Start()
	logger.Info("sync worker started")

	connections := services.NewConnectionService(repo, engine, registry, newClient, config.AppConfig.BaseURL, logger)

	// Create App with all dependencies injected
	application := app.New(repo, connections, syncWorker, logger)
	logger.Info("application initialized with dependency injection")

	return application
}

// Shutdown performs graceful shutdown of all services
func Shutdown(syncWorker *sync.Worker, db *database.DB, logger *slog.Logger) {
	logger.Info("shutting down services...")

	// Stop sync worker
	if syncWorker != nil {
		syncWorker.Stop()
		logger.Info("sync worker stopped")
	}

	// Close database
	if db != nil {
		db.Close()
		logger.Info("database closed")
	}
}
