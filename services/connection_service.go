package services

import (
	"context"
	"fmt"
	"log/slog"

	"cloudsync/models"
	"cloudsync/providers"
)

// ConnectionService owns the lifecycle of cloud storage connections:
// the authorization handshake, connection records, and sync triggers.
type ConnectionService struct {
	repo      ConnectionRepository
	engine    SyncEngine
	registry  *providers.Registry
	newClient ClientFactory
	states    *authStateStore
	baseURL   string
	logger    *slog.Logger
}

// NewConnectionService creates a connection service. baseURL is the
// externally visible origin used to build OAuth redirect URIs.
func NewConnectionService(repo ConnectionRepository, engine SyncEngine, registry *providers.Registry, newClient ClientFactory, baseURL string, logger *slog.Logger) *ConnectionService {
	if logger == nil {
		logger = slog.Default()
	}
	svc := &ConnectionService{
		repo:      repo,
		engine:    engine,
		registry:  registry,
		newClient: newClient,
		states:    newAuthStateStore(),
		baseURL:   baseURL,
		logger:    logger,
	}
	svc.states.StartCleanupRoutine()
	return svc
}

// ListProviders returns the supported providers in stable order
func (s *ConnectionService) ListProviders() []models.ProviderInfo {
	configs := s.registry.List()
	infos := make([]models.ProviderInfo, 0, len(configs))
	for _, cfg := range configs {
		infos = append(infos, models.ProviderInfo{
			ID:          cfg.ID,
			DisplayName: cfg.DisplayName,
		})
	}
	return infos
}

// StartAuthorization begins the OAuth flow for a provider and returns
// the URL the user must be sent to
func (s *ConnectionService) StartAuthorization(providerID string, projectID int64, rootFolderID string) (string, error) {
	state := s.states.Create(providerID, projectID, rootFolderID)

	authURL, err := providers.BuildAuthorizationURL(s.registry, providerID, state, s.redirectURI(providerID))
	if err != nil {
		return "", err
	}

	s.logger.Info("authorization started",
		"provider", providerID,
		"project_id", projectID,
	)

	return authURL, nil
}

// CompleteAuthorization finishes the OAuth flow: it validates the state
// token, exchanges the code, resolves the account identity, and persists
// the new connection.
func (s *ConnectionService) CompleteAuthorization(ctx context.Context, providerID, state, code string) (*models.Connection, error) {
	pending, ok := s.states.Consume(state)
	if !ok || pending.Provider != providerID {
		return nil, ErrInvalidState
	}

	pair, err := providers.ExchangeCode(ctx, s.registry, providerID, code, s.redirectURI(providerID))
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	conn := &models.Connection{
		ProjectID:      pending.ProjectID,
		Provider:       providerID,
		RootFolderID:   pending.RootFolderID,
		AccessToken:    pair.AccessToken,
		RefreshToken:   pair.RefreshToken,
		TokenExpiresAt: pair.ExpiresAt,
		SyncStatus:     models.SyncStatusIdle,
	}

	client, err := s.newClient(conn)
	if err != nil {
		return nil, err
	}

	info, err := client.GetUserInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve account identity: %w", err)
	}
	conn.AccountEmail = info.Email
	conn.AccountName = info.Name

	if err := s.repo.CreateConnection(conn); err != nil {
		return nil, fmt.Errorf("failed to save connection: %w", err)
	}

	s.logger.Info("connection established",
		"connection_id", conn.ID,
		"provider", providerID,
		"account", conn.AccountEmail,
	)

	return conn, nil
}

// GetConnection returns one connection by ID
func (s *ConnectionService) GetConnection(id int64) (*models.Connection, error) {
	conn, err := s.repo.GetConnection(id)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, ErrConnectionNotFound
	}
	return conn, nil
}

// ListConnections returns connections, optionally filtered by project
func (s *ConnectionService) ListConnections(projectID int64) ([]models.Connection, error) {
	if projectID > 0 {
		return s.repo.ListConnectionsByProject(projectID)
	}
	return s.repo.ListConnections()
}

// DeleteConnection removes a connection and its mirrored file records
func (s *ConnectionService) DeleteConnection(id int64) error {
	conn, err := s.repo.GetConnection(id)
	if err != nil {
		return err
	}
	if conn == nil {
		return ErrConnectionNotFound
	}
	return s.repo.DeleteConnection(id)
}

// TriggerSync runs a sync pass for a connection
func (s *ConnectionService) TriggerSync(ctx context.Context, connectionID, projectID int64) (*models.SyncResult, error) {
	conn, err := s.GetConnection(connectionID)
	if err != nil {
		return nil, err
	}
	return s.engine.SyncConnection(ctx, conn, projectID)
}

// ListFiles returns the mirrored file records for a connection
func (s *ConnectionService) ListFiles(connectionID int64) ([]models.SyncedFile, error) {
	if _, err := s.GetConnection(connectionID); err != nil {
		return nil, err
	}
	return s.repo.ListSyncedFiles(connectionID)
}

// DownloadFile fetches a mirrored file's content from the provider and
// marks the record synced. Returns the bytes and the MIME type.
func (s *ConnectionService) DownloadFile(ctx context.Context, connectionID, fileID int64) ([]byte, string, error) {
	conn, err := s.GetConnection(connectionID)
	if err != nil {
		return nil, "", err
	}

	file, err := s.repo.GetSyncedFile(fileID)
	if err != nil {
		return nil, "", err
	}
	if file == nil || file.ConnectionID != connectionID {
		return nil, "", ErrFileNotFound
	}

	client, err := s.newClient(conn)
	if err != nil {
		return nil, "", err
	}

	data, err := client.DownloadFile(ctx, file.CloudFileID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download file: %w", err)
	}

	if err := s.repo.MarkSyncedFileStatus(file.ID, models.FileSyncStatusSynced); err != nil {
		s.logger.Warn("failed to mark file synced",
			"file_id", file.ID,
			"error", err,
		)
	}

	return data, file.MimeType, nil
}

func (s *ConnectionService) redirectURI(providerID string) string {
	return fmt.Sprintf("%s/auth/%s/callback", s.baseURL, providerID)
}
