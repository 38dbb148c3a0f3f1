package database

import (
	"database/sql"
	"time"

	"cloudsync/models"
)

// ==================== CONNECTION OPERATIONS ====================

const connectionColumns = `id, project_id, provider, account_email, account_name, root_folder_id,
	   access_token, refresh_token, token_expires_at,
	   sync_status, last_sync_at, sync_error, created_at, updated_at`

// CreateConnection inserts a new connection and sets its generated id
func (r *Repository) CreateConnection(conn *models.Connection) error {
	now := time.Now()
	if conn.SyncStatus == "" {
		conn.SyncStatus = models.SyncStatusIdle
	}

	var expiresAt any
	if !conn.TokenExpiresAt.IsZero() {
		expiresAt = conn.TokenExpiresAt
	}

	result, err := r.db.Exec(`
		INSERT INTO cloud_connections (project_id, provider, account_email, account_name,
			root_folder_id, access_token, refresh_token, token_expires_at,
			sync_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		conn.ProjectID, conn.Provider, conn.AccountEmail, conn.AccountName,
		conn.RootFolderID, conn.AccessToken, conn.RefreshToken, expiresAt,
		string(conn.SyncStatus), now, now,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	conn.ID = id
	conn.CreatedAt = now
	conn.UpdatedAt = now
	return nil
}

// GetConnection returns a connection by id, or nil when not found
func (r *Repository) GetConnection(id int64) (*models.Connection, error) {
	row := r.db.QueryRow(`
		SELECT `+connectionColumns+`
		FROM cloud_connections WHERE id = ?
	`, id)

	conn, err := scanConnection(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// ListConnections returns all connections ordered by creation time
func (r *Repository) ListConnections() ([]models.Connection, error) {
	rows, err := r.db.Query(`
		SELECT ` + connectionColumns + `
		FROM cloud_connections
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// Initialize with empty slice to avoid returning nil
	connections := make([]models.Connection, 0)
	for rows.Next() {
		conn, err := scanConnection(rows)
		if err != nil {
			return nil, err
		}
		connections = append(connections, *conn)
	}

	return connections, rows.Err()
}

// ListConnectionsByProject returns a project's connections
func (r *Repository) ListConnectionsByProject(projectID int64) ([]models.Connection, error) {
	rows, err := r.db.Query(`
		SELECT `+connectionColumns+`
		FROM cloud_connections
		WHERE project_id = ?
		ORDER BY created_at ASC
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	connections := make([]models.Connection, 0)
	for rows.Next() {
		conn, err := scanConnection(rows)
		if err != nil {
			return nil, err
		}
		connections = append(connections, *conn)
	}

	return connections, rows.Err()
}

// UpdateConnectionTokens persists refreshed credentials onto the connection record
func (r *Repository) UpdateConnectionTokens(id int64, accessToken string, expiresAt time.Time) error {
	_, err := r.db.Exec(`
		UPDATE cloud_connections SET
			access_token = ?,
			token_expires_at = ?,
			updated_at = ?
		WHERE id = ?
	`, accessToken, expiresAt, time.Now(), id)
	return err
}

// UpdateConnectionSyncStatus writes the connection's sync state.
// lastSyncAt is left untouched when nil; syncError replaces the stored
// message (empty clears it).
func (r *Repository) UpdateConnectionSyncStatus(id int64, status models.SyncStatus, lastSyncAt *time.Time, syncError string) error {
	var errVal any
	if syncError != "" {
		errVal = syncError
	}

	if lastSyncAt != nil {
		_, err := r.db.Exec(`
			UPDATE cloud_connections SET
				sync_status = ?,
				last_sync_at = ?,
				sync_error = ?,
				updated_at = ?
			WHERE id = ?
		`, string(status), *lastSyncAt, errVal, time.Now(), id)
		return err
	}

	_, err := r.db.Exec(`
		UPDATE cloud_connections SET
			sync_status = ?,
			sync_error = ?,
			updated_at = ?
		WHERE id = ?
	`, string(status), errVal, time.Now(), id)
	return err
}

// DeleteConnection removes a connection and, via cascade, its synced file records
func (r *Repository) DeleteConnection(id int64) error {
	_, err := r.db.Exec("DELETE FROM cloud_connections WHERE id = ?", id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConnection(row rowScanner) (*models.Connection, error) {
	var conn models.Connection
	var tokenExpiresAt sql.NullTime
	var lastSyncAt sql.NullTime
	var syncError sql.NullString
	var status string

	err := row.Scan(
		&conn.ID, &conn.ProjectID, &conn.Provider, &conn.AccountEmail, &conn.AccountName,
		&conn.RootFolderID, &conn.AccessToken, &conn.RefreshToken, &tokenExpiresAt,
		&status, &lastSyncAt, &syncError, &conn.CreatedAt, &conn.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	conn.SyncStatus = models.SyncStatus(status)
	if tokenExpiresAt.Valid {
		conn.TokenExpiresAt = tokenExpiresAt.Time
	}
	if lastSyncAt.Valid {
		conn.LastSyncAt = &lastSyncAt.Time
	}
	if syncError.Valid {
		conn.SyncError = syncError.String
	}

	return &conn, nil
}
