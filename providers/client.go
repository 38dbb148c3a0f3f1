package providers

import (
	"context"
	"time"

	"cloudsync/models"
)

// Client is the normalized contract every vendor implementation
// satisfies. Each call transparently ensures a valid access token first;
// callers never reason about expiry themselves.
type Client interface {
	// ListFiles lists the immediate children of folderID, of the
	// connection's configured root folder when folderID is empty, or of
	// the provider's top-level root if neither is set. Never returns nil
	// for an empty folder. Folders are included; the sync engine skips
	// them.
	ListFiles(ctx context.Context, folderID string) ([]models.CloudFile, error)

	// DownloadFile fetches raw file content
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)

	// GetFileMetadata fetches one file's normalized metadata
	GetFileMetadata(ctx context.Context, fileID string) (*models.CloudFile, error)

	// GetUserInfo identifies the cloud account, used to label the connection
	GetUserInfo(ctx context.Context) (*UserInfo, error)

	// RefreshAccessToken exchanges the stored refresh token for a new
	// access token. Fails with ErrNoRefreshToken when the connection has
	// none.
	RefreshAccessToken(ctx context.Context) (*TokenPair, error)
}

// UserInfo labels a connection for the end user
type UserInfo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// TokenStore is the slice of the persistence layer the clients need to
// write refreshed credentials back to the connection record
type TokenStore interface {
	UpdateConnectionTokens(id int64, accessToken string, expiresAt time.Time) error
}
