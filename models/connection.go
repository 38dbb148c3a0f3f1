package models

import "time"

// SyncStatus tracks the state of a connection's sync pass.
// Transitions are linear per connection: idle -> syncing -> (idle | error).
type SyncStatus string

const (
	SyncStatusIdle    SyncStatus = "idle"
	SyncStatusSyncing SyncStatus = "syncing"
	SyncStatusError   SyncStatus = "error"
)

// FileSyncStatus tracks the local state of a synced file record.
// "pending" signals the content-fetch process that a download is due.
type FileSyncStatus string

const (
	FileSyncStatusPending FileSyncStatus = "pending"
	FileSyncStatusSynced  FileSyncStatus = "synced"
)

// Connection is one authorized link between a project and a cloud-storage account
type Connection struct {
	ID           int64  `json:"id"`
	ProjectID    int64  `json:"project_id"`
	Provider     string `json:"provider"`
	AccountEmail string `json:"account_email"`
	AccountName  string `json:"account_name"`

	// Optional scope restriction: sync only the contents of this folder
	RootFolderID string `json:"root_folder_id,omitempty"`

	AccessToken    string    `json:"-"`
	RefreshToken   string    `json:"-"`
	TokenExpiresAt time.Time `json:"-"`

	SyncStatus SyncStatus `json:"sync_status"`
	LastSyncAt *time.Time `json:"last_sync_at,omitempty"`
	SyncError  string     `json:"sync_error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
