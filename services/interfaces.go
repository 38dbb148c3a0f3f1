package services

import (
	"context"

	"cloudsync/models"
	"cloudsync/providers"
)

// ConnectionRepository defines the data access needed by the connection service
type ConnectionRepository interface {
	CreateConnection(conn *models.Connection) error
	GetConnection(id int64) (*models.Connection, error)
	ListConnections() ([]models.Connection, error)
	ListConnectionsByProject(projectID int64) ([]models.Connection, error)
	DeleteConnection(id int64) error
	ListSyncedFiles(connectionID int64) ([]models.SyncedFile, error)
	GetSyncedFile(id int64) (*models.SyncedFile, error)
	MarkSyncedFileStatus(id int64, status models.FileSyncStatus) error
}

// SyncEngine runs sync passes
type SyncEngine interface {
	SyncConnection(ctx context.Context, conn *models.Connection, projectID int64) (*models.SyncResult, error)
}

// ClientFactory constructs provider clients for connections
type ClientFactory func(conn *models.Connection) (providers.Client, error)
