package models

type StartAuthRequest struct {
	ProjectID    int64  `json:"project_id" validate:"required,gt=0"`
	RootFolderID string `json:"root_folder_id,omitempty"`
}

type SyncRequest struct {
	ProjectID int64 `json:"project_id" validate:"omitempty,gt=0"`
}

type ProviderInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}
