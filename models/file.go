package models

import "time"

// CloudFile is provider-normalized remote file metadata.
// Produced fresh on every listing or metadata call; never persisted as-is.
type CloudFile struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	MimeType    string    `json:"mime_type"`
	Size        int64     `json:"size"`
	Path        string    `json:"path"`
	ModifiedAt  time.Time `json:"modified_at"`
	IsFolder    bool      `json:"is_folder"`
	DownloadURL string    `json:"download_url,omitempty"`
}

// SyncedFile is the local mirror of one remote file already observed by a sync pass
type SyncedFile struct {
	ID              int64          `json:"id"`
	ConnectionID    int64          `json:"connection_id"`
	ProjectID       int64          `json:"project_id"`
	CloudFileID     string         `json:"cloud_file_id"`
	Path            string         `json:"path"`
	Name            string         `json:"name"`
	MimeType        string         `json:"mime_type"`
	Size            int64          `json:"size"`
	CloudModifiedAt time.Time      `json:"cloud_modified_at"`
	SyncStatus      FileSyncStatus `json:"sync_status"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// SyncResult is the aggregate outcome of one sync pass
type SyncResult struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Errors  int `json:"errors"`
}
