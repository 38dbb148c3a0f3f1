package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"cloudsync/models"
)

const googleFolderMimeType = "application/vnd.google-apps.folder"

const googleListFields = "files(id, name, mimeType, size, modifiedTime, webContentLink)"

// googleDriveClient implements Client against the Drive v3 API
type googleDriveClient struct {
	conn       *models.Connection
	cfg        Config
	store      TokenStore
	httpClient *http.Client

	refreshMu sync.Mutex

	// svc is rebuilt whenever the access token it was created with changes
	svc      *drive.Service
	svcToken string
}

func newGoogleDriveClient(conn *models.Connection, cfg Config, store TokenStore, httpClient *http.Client) *googleDriveClient {
	return &googleDriveClient{
		conn:       conn,
		cfg:        cfg,
		store:      store,
		httpClient: httpClient,
	}
}

// service ensures a valid token and returns a Drive service bound to it
func (c *googleDriveClient) service(ctx context.Context) (*drive.Service, error) {
	err := ensureValidToken(ctx, c.conn, c.store, &c.refreshMu, c.RefreshAccessToken)
	if err != nil {
		return nil, err
	}

	if c.svc == nil || c.svcToken != c.conn.AccessToken {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.conn.AccessToken})
		hc := &http.Client{
			Timeout:   c.httpClient.Timeout,
			Transport: &oauth2.Transport{Source: src, Base: c.httpClient.Transport},
		}

		svc, err := drive.NewService(ctx, option.WithHTTPClient(hc))
		if err != nil {
			return nil, err
		}
		c.svc = svc
		c.svcToken = c.conn.AccessToken
	}

	return c.svc, nil
}

func (c *googleDriveClient) ListFiles(ctx context.Context, folderID string) ([]models.CloudFile, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	folder := folderID
	if folder == "" {
		folder = c.conn.RootFolderID
	}
	if folder == "" {
		folder = "root"
	}

	// Folder membership is a query filter in Drive, not a path segment
	query := fmt.Sprintf("'%s' in parents and trashed=false", folder)

	files := make([]models.CloudFile, 0)
	pageToken := ""
	for {
		call := svc.Files.List().
			Q(query).
			Fields(googleListFields, "nextPageToken").
			PageSize(1000).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		list, err := call.Do()
		if err != nil {
			return nil, c.apiError(err)
		}

		for _, f := range list.Files {
			files = append(files, googleFileToCloudFile(f))
		}

		if list.NextPageToken == "" {
			return files, nil
		}
		pageToken = list.NextPageToken
	}
}

func (c *googleDriveClient) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, c.apiError(err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

func (c *googleDriveClient) GetFileMetadata(ctx context.Context, fileID string) (*models.CloudFile, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	f, err := svc.Files.Get(fileID).
		Fields("id, name, mimeType, size, modifiedTime, webContentLink").
		Context(ctx).
		Do()
	if err != nil {
		return nil, c.apiError(err)
	}

	file := googleFileToCloudFile(f)
	return &file, nil
}

func (c *googleDriveClient) GetUserInfo(ctx context.Context) (*UserInfo, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	about, err := svc.About.Get().Fields("user(displayName, emailAddress)").Context(ctx).Do()
	if err != nil {
		return nil, c.apiError(err)
	}

	return &UserInfo{
		Email: about.User.EmailAddress,
		Name:  about.User.DisplayName,
	}, nil
}

func (c *googleDriveClient) RefreshAccessToken(ctx context.Context) (*TokenPair, error) {
	return refreshGrant(ctx, c.cfg, c.conn)
}

// apiError maps SDK errors onto the shared APIError shape
func (c *googleDriveClient) apiError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		body := gerr.Message
		if body == "" {
			body = gerr.Body
		}
		return &APIError{Provider: c.cfg.ID, StatusCode: gerr.Code, Body: body}
	}
	return err
}

// googleFileToCloudFile normalizes a Drive file. Size may be absent for
// native Google documents and defaults to 0.
func googleFileToCloudFile(f *drive.File) models.CloudFile {
	modifiedAt, _ := time.Parse(time.RFC3339, f.ModifiedTime)
	return models.CloudFile{
		ID:          f.Id,
		Name:        f.Name,
		MimeType:    f.MimeType,
		Size:        f.Size,
		Path:        "/" + f.Name,
		ModifiedAt:  modifiedAt,
		IsFolder:    f.MimeType == googleFolderMimeType,
		DownloadURL: f.WebContentLink,
	}
}
