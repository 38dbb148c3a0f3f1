package sync

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"cloudsync/models"
	"cloudsync/providers"
)

// ErrSyncInProgress is returned when a second sync pass is requested for
// a connection that is already being synced
var ErrSyncInProgress = errors.New("sync already in progress for this connection")

// Storage is the slice of the persistence layer the engine needs
type Storage interface {
	UpdateConnectionSyncStatus(id int64, status models.SyncStatus, lastSyncAt *time.Time, syncError string) error
	GetSyncedFileByCloudID(connectionID int64, cloudFileID string) (*models.SyncedFile, error)
	CreateSyncedFile(file *models.SyncedFile) error
	UpdateSyncedFile(id int64, name, mimeType string, size int64, modifiedAt time.Time, status models.FileSyncStatus) error
}

// ClientFactory constructs a provider client for a connection
type ClientFactory func(conn *models.Connection) (providers.Client, error)

// Engine orchestrates sync passes. The persisted "syncing" status is
// advisory for readers; the in-process lock table is what actually
// guarantees at most one pass per connection.
type Engine struct {
	storage   Storage
	newClient ClientFactory
	logger    *slog.Logger

	mu       sync.Mutex
	inFlight map[int64]struct{}
}

// NewEngine creates a sync engine
func NewEngine(storage Storage, newClient ClientFactory, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		storage:   storage,
		newClient: newClient,
		logger:    logger,
		inFlight:  make(map[int64]struct{}),
	}
}

type reconcileAction int

const (
	actionNone reconcileAction = iota
	actionAdded
	actionUpdated
)

// SyncConnection runs one full sync pass for a connection.
//
// The pass lists the connection's remote scope once, reconciles every
// non-folder entry against the local mirror records, and returns
// aggregate counts. A failure while listing (or building the client)
// marks the connection as errored and is returned; a failure on a single
// file is logged, counted, and never aborts the remaining files.
func (e *Engine) SyncConnection(ctx context.Context, conn *models.Connection, projectID int64) (*models.SyncResult, error) {
	if !e.acquire(conn.ID) {
		return nil, ErrSyncInProgress
	}
	defer e.release(conn.ID)

	if projectID == 0 {
		projectID = conn.ProjectID
	}

	// Persist the in-progress state immediately so concurrent readers see it
	conn.SyncStatus = models.SyncStatusSyncing
	if err := e.storage.UpdateConnectionSyncStatus(conn.ID, models.SyncStatusSyncing, nil, ""); err != nil {
		return nil, e.fail(conn, err)
	}

	client, err := e.newClient(conn)
	if err != nil {
		return nil, e.fail(conn, err)
	}

	files, err := client.ListFiles(ctx, "")
	if err != nil {
		return nil, e.fail(conn, err)
	}

	result := &models.SyncResult{}
	for _, file := range files {
		// Folders are skipped, not recursed: one top-level listing per pass
		if file.IsFolder {
			continue
		}

		action, err := e.reconcileFile(conn, projectID, file)
		if err != nil {
			e.logger.Warn("failed to sync file",
				"connection_id", conn.ID,
				"file", file.Name,
				"error", err,
			)
			result.Errors++
			continue
		}

		switch action {
		case actionAdded:
			result.Added++
		case actionUpdated:
			result.Updated++
		}
	}

	now := time.Now()
	conn.SyncStatus = models.SyncStatusIdle
	conn.LastSyncAt = &now
	conn.SyncError = ""
	if err := e.storage.UpdateConnectionSyncStatus(conn.ID, models.SyncStatusIdle, &now, ""); err != nil {
		return nil, err
	}

	e.logger.Info("sync pass completed",
		"connection_id", conn.ID,
		"provider", conn.Provider,
		"added", result.Added,
		"updated", result.Updated,
		"errors", result.Errors,
	)

	return result, nil
}

// reconcileFile diffs one remote file against its local mirror record.
// A record is created on first observation and updated only when the
// remote timestamp is strictly newer, which makes repeated passes with
// no remote changes no-ops.
func (e *Engine) reconcileFile(conn *models.Connection, projectID int64, file models.CloudFile) (reconcileAction, error) {
	existing, err := e.storage.GetSyncedFileByCloudID(conn.ID, file.ID)
	if err != nil {
		return actionNone, err
	}

	if existing == nil {
		record := &models.SyncedFile{
			ConnectionID:    conn.ID,
			ProjectID:       projectID,
			CloudFileID:     file.ID,
			Path:            file.Path,
			Name:            file.Name,
			MimeType:        file.MimeType,
			Size:            file.Size,
			CloudModifiedAt: file.ModifiedAt,
			SyncStatus:      models.FileSyncStatusPending,
		}
		if err := e.storage.CreateSyncedFile(record); err != nil {
			return actionNone, err
		}
		return actionAdded, nil
	}

	// A missing stored timestamp compares as the epoch
	if !file.ModifiedAt.After(existing.CloudModifiedAt) {
		return actionNone, nil
	}

	err = e.storage.UpdateSyncedFile(existing.ID, file.Name, file.MimeType, file.Size, file.ModifiedAt, models.FileSyncStatusPending)
	if err != nil {
		return actionNone, err
	}
	return actionUpdated, nil
}

// fail records an errored pass on the connection and returns the cause
func (e *Engine) fail(conn *models.Connection, cause error) error {
	conn.SyncStatus = models.SyncStatusError
	conn.SyncError = cause.Error()
	if err := e.storage.UpdateConnectionSyncStatus(conn.ID, models.SyncStatusError, nil, cause.Error()); err != nil {
		e.logger.Error("failed to record sync error",
			"connection_id", conn.ID,
			"error", err,
		)
	}
	return cause
}

func (e *Engine) acquire(connectionID int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, busy := e.inFlight[connectionID]; busy {
		return false
	}
	e.inFlight[connectionID] = struct{}{}
	return true
}

func (e *Engine) release(connectionID int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inFlight, connectionID)
}
