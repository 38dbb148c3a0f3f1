package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"cloudsync/models"
)

const graphBaseURL = "https://graph.microsoft.com/v1.0"

// driveItem mirrors the Graph API driveItem JSON. Folder membership is a
// facet, not a MIME type.
type driveItem struct {
	ID                   string       `json:"id"`
	Name                 string       `json:"name"`
	Size                 int64        `json:"size"`
	LastModifiedDateTime time.Time    `json:"lastModifiedDateTime"`
	File                 *fileFacet   `json:"file"`
	Folder               *folderFacet `json:"folder"`
	ParentReference      *parentRef   `json:"parentReference"`
	DownloadURL          string       `json:"@microsoft.graph.downloadUrl"`
}

type fileFacet struct {
	MimeType string `json:"mimeType"`
}

type folderFacet struct {
	ChildCount int `json:"childCount"`
}

type parentRef struct {
	Path string `json:"path"`
}

type driveItemList struct {
	Value    []driveItem `json:"value"`
	NextLink string      `json:"@odata.nextLink"`
}

type graphUser struct {
	DisplayName       string `json:"displayName"`
	Mail              string `json:"mail"`
	UserPrincipalName string `json:"userPrincipalName"`
}

// oneDriveClient implements Client against the Microsoft Graph API
type oneDriveClient struct {
	conn       *models.Connection
	cfg        Config
	store      TokenStore
	httpClient *http.Client
	baseURL    string

	refreshMu sync.Mutex
}

func newOneDriveClient(conn *models.Connection, cfg Config, store TokenStore, httpClient *http.Client) *oneDriveClient {
	return &oneDriveClient{
		conn:       conn,
		cfg:        cfg,
		store:      store,
		httpClient: httpClient,
		baseURL:    graphBaseURL,
	}
}

func (c *oneDriveClient) ListFiles(ctx context.Context, folderID string) ([]models.CloudFile, error) {
	folder := folderID
	if folder == "" {
		folder = c.conn.RootFolderID
	}

	// "root" is a literal path segment when no folder id is given
	path := "/me/drive/root/children"
	if folder != "" {
		path = fmt.Sprintf("/me/drive/items/%s/children", url.PathEscape(folder))
	}

	files := make([]models.CloudFile, 0)
	next := c.baseURL + path
	for next != "" {
		var list driveItemList
		if err := c.getJSON(ctx, next, &list); err != nil {
			return nil, err
		}

		for _, item := range list.Value {
			files = append(files, item.toCloudFile())
		}
		next = list.NextLink
	}

	return files, nil
}

// DownloadFile fetches content through the content endpoint. Graph also
// hands out an ephemeral download URL per item; that is exposed on the
// CloudFile but this method stays uniform with the other providers.
func (c *oneDriveClient) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, c.baseURL+fmt.Sprintf("/me/drive/items/%s/content", url.PathEscape(fileID)))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

func (c *oneDriveClient) GetFileMetadata(ctx context.Context, fileID string) (*models.CloudFile, error) {
	var item driveItem
	err := c.getJSON(ctx, c.baseURL+fmt.Sprintf("/me/drive/items/%s", url.PathEscape(fileID)), &item)
	if err != nil {
		return nil, err
	}

	file := item.toCloudFile()
	return &file, nil
}

func (c *oneDriveClient) GetUserInfo(ctx context.Context) (*UserInfo, error) {
	var user graphUser
	if err := c.getJSON(ctx, c.baseURL+"/me", &user); err != nil {
		return nil, err
	}

	email := user.Mail
	if email == "" {
		email = user.UserPrincipalName
	}

	return &UserInfo{Email: email, Name: user.DisplayName}, nil
}

func (c *oneDriveClient) RefreshAccessToken(ctx context.Context) (*TokenPair, error) {
	return refreshGrant(ctx, c.cfg, c.conn)
}

// do ensures a valid token and executes an authenticated request
func (c *oneDriveClient) do(ctx context.Context, method, rawURL string) (*http.Response, error) {
	err := ensureValidToken(ctx, c.conn, c.store, &c.refreshMu, c.RefreshAccessToken)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.conn.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &APIError{Provider: c.cfg.ID, StatusCode: resp.StatusCode, Body: string(body)}
	}

	return resp, nil
}

func (c *oneDriveClient) getJSON(ctx context.Context, rawURL string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, rawURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return json.NewDecoder(resp.Body).Decode(out)
}

func (d driveItem) toCloudFile() models.CloudFile {
	mimeType := ""
	if d.File != nil {
		mimeType = d.File.MimeType
	}

	path := "/" + d.Name
	if d.ParentReference != nil && d.ParentReference.Path != "" {
		path = d.ParentReference.Path + "/" + d.Name
	}

	return models.CloudFile{
		ID:          d.ID,
		Name:        d.Name,
		MimeType:    mimeType,
		Size:        d.Size,
		Path:        path,
		ModifiedAt:  d.LastModifiedDateTime,
		IsFolder:    d.Folder != nil,
		DownloadURL: d.DownloadURL,
	}
}
