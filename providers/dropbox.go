package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"cloudsync/models"
)

const (
	dropboxAPIBaseURL     = "https://api.dropboxapi.com/2"
	dropboxContentBaseURL = "https://content.dropboxapi.com/2"
)

// dropboxEntry mirrors a files/list_folder entry. Dropbox addresses
// files by path but carries a parallel opaque id.
type dropboxEntry struct {
	Tag            string    `json:".tag"`
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	PathDisplay    string    `json:"path_display"`
	Size           int64     `json:"size"`
	ServerModified time.Time `json:"server_modified"`
}

type dropboxListResult struct {
	Entries []dropboxEntry `json:"entries"`
	Cursor  string         `json:"cursor"`
	HasMore bool           `json:"has_more"`
}

type dropboxAccount struct {
	Email string `json:"email"`
	Name  struct {
		DisplayName string `json:"display_name"`
	} `json:"name"`
}

// dropboxClient implements Client against the Dropbox v2 API
type dropboxClient struct {
	conn       *models.Connection
	cfg        Config
	store      TokenStore
	httpClient *http.Client

	apiBaseURL     string
	contentBaseURL string

	refreshMu sync.Mutex
}

func newDropboxClient(conn *models.Connection, cfg Config, store TokenStore, httpClient *http.Client) *dropboxClient {
	return &dropboxClient{
		conn:           conn,
		cfg:            cfg,
		store:          store,
		httpClient:     httpClient,
		apiBaseURL:     dropboxAPIBaseURL,
		contentBaseURL: dropboxContentBaseURL,
	}
}

func (c *dropboxClient) ListFiles(ctx context.Context, folderID string) ([]models.CloudFile, error) {
	// Dropbox represents root as the empty path, not the word "root"
	path := folderID
	if path == "" {
		path = c.conn.RootFolderID
	}

	files := make([]models.CloudFile, 0)

	var result dropboxListResult
	err := c.postJSON(ctx, c.apiBaseURL+"/files/list_folder", map[string]any{"path": path}, &result)
	if err != nil {
		return nil, err
	}

	for {
		for _, entry := range result.Entries {
			files = append(files, entry.toCloudFile())
		}
		if !result.HasMore {
			return files, nil
		}

		next := dropboxListResult{}
		err = c.postJSON(ctx, c.apiBaseURL+"/files/list_folder/continue", map[string]any{"cursor": result.Cursor}, &next)
		if err != nil {
			return nil, err
		}
		result = next
	}
}

// DownloadFile fetches content from the content endpoint; the file path
// travels in the Dropbox-API-Arg header, not the body
func (c *dropboxClient) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	err := ensureValidToken(ctx, c.conn, c.store, &c.refreshMu, c.RefreshAccessToken)
	if err != nil {
		return nil, err
	}

	arg, err := json.Marshal(map[string]string{"path": fileID})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.contentBaseURL+"/files/download", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.conn.AccessToken)
	req.Header.Set("Dropbox-API-Arg", string(arg))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{Provider: c.cfg.ID, StatusCode: resp.StatusCode, Body: string(body)}
	}

	return io.ReadAll(resp.Body)
}

func (c *dropboxClient) GetFileMetadata(ctx context.Context, fileID string) (*models.CloudFile, error) {
	var entry dropboxEntry
	err := c.postJSON(ctx, c.apiBaseURL+"/files/get_metadata", map[string]any{"path": fileID}, &entry)
	if err != nil {
		return nil, err
	}

	file := entry.toCloudFile()
	return &file, nil
}

func (c *dropboxClient) GetUserInfo(ctx context.Context) (*UserInfo, error) {
	var account dropboxAccount
	err := c.postJSON(ctx, c.apiBaseURL+"/users/get_current_account", nil, &account)
	if err != nil {
		return nil, err
	}

	return &UserInfo{Email: account.Email, Name: account.Name.DisplayName}, nil
}

func (c *dropboxClient) RefreshAccessToken(ctx context.Context) (*TokenPair, error) {
	return refreshGrant(ctx, c.cfg, c.conn)
}

// postJSON ensures a valid token, POSTs a JSON body, and decodes the response
func (c *dropboxClient) postJSON(ctx context.Context, rawURL string, body any, out any) error {
	err := ensureValidToken(ctx, c.conn, c.store, &c.refreshMu, c.RefreshAccessToken)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.conn.AccessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return &APIError{Provider: c.cfg.ID, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (e dropboxEntry) toCloudFile() models.CloudFile {
	// Dropbox does not report a MIME type; derive one from the extension
	mimeType := mime.TypeByExtension(filepath.Ext(e.Name))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	isFolder := e.Tag == "folder"
	if isFolder {
		mimeType = ""
	}

	return models.CloudFile{
		ID:         e.ID,
		Name:       e.Name,
		MimeType:   mimeType,
		Size:       e.Size,
		Path:       e.PathDisplay,
		ModifiedAt: e.ServerModified,
		IsFolder:   isFolder,
	}
}