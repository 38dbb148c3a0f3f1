package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/oauth2"
)

func TestRegistry_Get(t *testing.T) {
	reg := NewRegistry()

	tests := []struct {
		id          string
		displayName string
	}{
		{ProviderGoogleDrive, "Google Drive"},
		{ProviderOneDrive, "OneDrive"},
		{ProviderDropbox, "Dropbox"},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			cfg, err := reg.Get(tt.id)
			assert.NoError(t, err)
			assert.Equal(t, tt.id, cfg.ID)
			assert.Equal(t, tt.displayName, cfg.DisplayName)
			assert.NotEmpty(t, cfg.AuthURL)
			assert.NotEmpty(t, cfg.TokenURL)
			assert.NotEmpty(t, cfg.Scopes)
			assert.NotEmpty(t, cfg.ClientIDEnv)
			assert.NotEmpty(t, cfg.ClientSecretEnv)
		})
	}
}

func TestRegistry_Get_Unknown(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Get("box")

	assert.ErrorIs(t, err, ErrUnknownProvider)
	assert.Contains(t, err.Error(), "box")
}

func TestRegistry_List_Sorted(t *testing.T) {
	reg := NewRegistry()

	configs := reg.List()

	assert.Len(t, configs, 3)
	assert.Equal(t, ProviderDropbox, configs[0].ID)
	assert.Equal(t, ProviderGoogleDrive, configs[1].ID)
	assert.Equal(t, ProviderOneDrive, configs[2].ID)
}

func TestRegistry_AuthStyles(t *testing.T) {
	reg := NewRegistry()

	google, _ := reg.Get(ProviderGoogleDrive)
	onedrive, _ := reg.Get(ProviderOneDrive)
	dropbox, _ := reg.Get(ProviderDropbox)

	// Dropbox refreshes with HTTP Basic client auth, the others with body params
	assert.Equal(t, oauth2.AuthStyleInParams, google.AuthStyle)
	assert.Equal(t, oauth2.AuthStyleInParams, onedrive.AuthStyle)
	assert.Equal(t, oauth2.AuthStyleInHeader, dropbox.AuthStyle)
}
