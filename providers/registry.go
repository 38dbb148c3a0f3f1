package providers

import (
	"fmt"
	"sort"

	"golang.org/x/oauth2"
)

// Provider identifiers used in connection records and URLs.
const (
	ProviderGoogleDrive = "google"
	ProviderOneDrive    = "onedrive"
	ProviderDropbox     = "dropbox"
)

// Config holds the static OAuth configuration for one provider.
// Client credentials are not stored here; they are read from the
// environment keys named below at the moment they are needed.
type Config struct {
	ID              string
	DisplayName     string
	AuthURL         string
	TokenURL        string
	AuthStyle       oauth2.AuthStyle
	Scopes          []string
	ClientIDEnv     string
	ClientSecretEnv string
}

// Registry is the immutable provider table, constructed once at startup
type Registry struct {
	configs map[string]Config
}

// NewRegistry builds the registry with all supported providers.
// Dropbox authenticates token refresh with HTTP Basic client auth
// (AuthStyleInHeader); Google and Microsoft use body parameters.
func NewRegistry() *Registry {
	configs := map[string]Config{
		ProviderGoogleDrive: {
			ID:          ProviderGoogleDrive,
			DisplayName: "Google Drive",
			AuthURL:     "https://accounts.google.com/o/oauth2/auth",
			TokenURL:    "https://oauth2.googleapis.com/token",
			AuthStyle:   oauth2.AuthStyleInParams,
			Scopes: []string{
				"https://www.googleapis.com/auth/drive.readonly",
				"https://www.googleapis.com/auth/userinfo.email",
			},
			ClientIDEnv:     "GOOGLE_CLIENT_ID",
			ClientSecretEnv: "GOOGLE_CLIENT_SECRET",
		},
		ProviderOneDrive: {
			ID:          ProviderOneDrive,
			DisplayName: "OneDrive",
			AuthURL:     "https://login.microsoftonline.com/common/oauth2/v2.0/authorize",
			TokenURL:    "https://login.microsoftonline.com/common/oauth2/v2.0/token",
			AuthStyle:   oauth2.AuthStyleInParams,
			Scopes:      []string{"Files.Read", "User.Read", "offline_access"},

			ClientIDEnv:     "ONEDRIVE_CLIENT_ID",
			ClientSecretEnv: "ONEDRIVE_CLIENT_SECRET",
		},
		ProviderDropbox: {
			ID:          ProviderDropbox,
			DisplayName: "Dropbox",
			AuthURL:     "https://www.dropbox.com/oauth2/authorize",
			TokenURL:    "https://api.dropboxapi.com/oauth2/token",
			AuthStyle:   oauth2.AuthStyleInHeader,
			Scopes: []string{
				"files.metadata.read",
				"files.content.read",
				"account_info.read",
			},
			ClientIDEnv:     "DROPBOX_CLIENT_ID",
			ClientSecretEnv: "DROPBOX_CLIENT_SECRET",
		},
	}

	return &Registry{configs: configs}
}

// Get returns the config for a provider id
func (r *Registry) Get(id string) (Config, error) {
	cfg, ok := r.configs[id]
	if !ok {
		return Config{}, fmt.Errorf("%w: %s", ErrUnknownProvider, id)
	}
	return cfg, nil
}

// List returns all provider configs sorted by id
func (r *Registry) List() []Config {
	configs := make([]Config, 0, len(r.configs))
	for _, cfg := range r.configs {
		configs = append(configs, cfg)
	}
	sort.Slice(configs, func(i, j int) bool { return configs[i].ID < configs[j].ID })
	return configs
}

// oauthConfig assembles an oauth2.Config for this provider
func (c Config) oauthConfig(clientID, clientSecret, redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       c.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   c.AuthURL,
			TokenURL:  c.TokenURL,
			AuthStyle: c.AuthStyle,
		},
	}
}
