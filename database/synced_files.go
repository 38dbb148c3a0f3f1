package database

import (
	"database/sql"
	"time"

	"cloudsync/models"
)

// ==================== SYNCED FILE OPERATIONS ====================

const syncedFileColumns = `id, connection_id, project_id, cloud_file_id, path, name,
	   mime_type, size, cloud_modified_at, sync_status, created_at, updated_at`

// GetSyncedFileByCloudID looks up the local mirror record for a remote
// file, or nil when the file has never been observed
func (r *Repository) GetSyncedFileByCloudID(connectionID int64, cloudFileID string) (*models.SyncedFile, error) {
	row := r.db.QueryRow(`
		SELECT `+syncedFileColumns+`
		FROM cloud_synced_files
		WHERE connection_id = ? AND cloud_file_id = ?
	`, connectionID, cloudFileID)

	file, err := scanSyncedFile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return file, nil
}

// CreateSyncedFile inserts a new mirror record and sets its generated id.
// The unique (connection_id, cloud_file_id) index guarantees at most one
// record per remote file.
func (r *Repository) CreateSyncedFile(file *models.SyncedFile) error {
	now := time.Now()
	if file.SyncStatus == "" {
		file.SyncStatus = models.FileSyncStatusPending
	}

	result, err := r.db.Exec(`
		INSERT INTO cloud_synced_files (connection_id, project_id, cloud_file_id, path, name,
			mime_type, size, cloud_modified_at, sync_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		file.ConnectionID, file.ProjectID, file.CloudFileID, file.Path, file.Name,
		file.MimeType, file.Size, file.CloudModifiedAt, string(file.SyncStatus), now, now,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	file.ID = id
	file.CreatedAt = now
	file.UpdatedAt = now
	return nil
}

// UpdateSyncedFile refreshes a mirror record from newer remote metadata
func (r *Repository) UpdateSyncedFile(id int64, name, mimeType string, size int64, modifiedAt time.Time, status models.FileSyncStatus) error {
	_, err := r.db.Exec(`
		UPDATE cloud_synced_files SET
			name = ?,
			mime_type = ?,
			size = ?,
			cloud_modified_at = ?,
			sync_status = ?,
			updated_at = ?
		WHERE id = ?
	`, name, mimeType, size, modifiedAt, string(status), time.Now(), id)
	return err
}

// MarkSyncedFileStatus updates only the local sync status of a record
func (r *Repository) MarkSyncedFileStatus(id int64, status models.FileSyncStatus) error {
	_, err := r.db.Exec(`
		UPDATE cloud_synced_files SET
			sync_status = ?,
			updated_at = ?
		WHERE id = ?
	`, string(status), time.Now(), id)
	return err
}

// ListSyncedFiles returns all mirror records for a connection
func (r *Repository) ListSyncedFiles(connectionID int64) ([]models.SyncedFile, error) {
	rows, err := r.db.Query(`
		SELECT `+syncedFileColumns+`
		FROM cloud_synced_files
		WHERE connection_id = ?
		ORDER BY path ASC, name ASC
	`, connectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	files := make([]models.SyncedFile, 0)
	for rows.Next() {
		file, err := scanSyncedFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, *file)
	}

	return files, rows.Err()
}

// GetSyncedFile returns one mirror record by id, or nil when not found
func (r *Repository) GetSyncedFile(id int64) (*models.SyncedFile, error) {
	row := r.db.QueryRow(`
		SELECT `+syncedFileColumns+`
		FROM cloud_synced_files
		WHERE id = ?
	`, id)

	file, err := scanSyncedFile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return file, nil
}

func scanSyncedFile(row rowScanner) (*models.SyncedFile, error) {
	var file models.SyncedFile
	var modifiedAt sql.NullTime
	var status string

	err := row.Scan(
		&file.ID, &file.ConnectionID, &file.ProjectID, &file.CloudFileID, &file.Path, &file.Name,
		&file.MimeType, &file.Size, &modifiedAt, &status, &file.CreatedAt, &file.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	file.SyncStatus = models.FileSyncStatus(status)
	if modifiedAt.Valid {
		file.CloudModifiedAt = modifiedAt.Time
	}

	return &file, nil
}
