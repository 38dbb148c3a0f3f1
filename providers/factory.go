package providers

import (
	"fmt"
	"net/http"

	"cloudsync/models"
)

// NewClient selects and constructs the provider client for a connection.
// Pure dispatch; no I/O happens until the client is used.
func NewClient(conn *models.Connection, reg *Registry, store TokenStore, httpClient *http.Client) (Client, error) {
	cfg, err := reg.Get(conn.Provider)
	if err != nil {
		return nil, err
	}

	switch cfg.ID {
	case ProviderGoogleDrive:
		return newGoogleDriveClient(conn, cfg, store, httpClient), nil
	case ProviderOneDrive:
		return newOneDriveClient(conn, cfg, store, httpClient), nil
	case ProviderDropbox:
		return newDropboxClient(conn, cfg, store, httpClient), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, conn.Provider)
	}
}
