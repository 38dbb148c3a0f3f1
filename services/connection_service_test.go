package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"cloudsync/models"
	"cloudsync/providers"
)

// ==================== MOCKS ====================

// MockRepository is a mock implementation of ConnectionRepository interface
type MockRepository struct {
	mock.Mock
}

// Ensure MockRepository implements ConnectionRepository interface
var _ ConnectionRepository = (*MockRepository)(nil)

func (m *MockRepository) CreateConnection(conn *models.Connection) error {
	args := m.Called(conn)
	return args.Error(0)
}

func (m *MockRepository) GetConnection(id int64) (*models.Connection, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Connection), args.Error(1)
}

func (m *MockRepository) ListConnections() ([]models.Connection, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Connection), args.Error(1)
}

func (m *MockRepository) ListConnectionsByProject(projectID int64) ([]models.Connection, error) {
	args := m.Called(projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Connection), args.Error(1)
}

func (m *MockRepository) DeleteConnection(id int64) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockRepository) ListSyncedFiles(connectionID int64) ([]models.SyncedFile, error) {
	args := m.Called(connectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SyncedFile), args.Error(1)
}

func (m *MockRepository) GetSyncedFile(id int64) (*models.SyncedFile, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SyncedFile), args.Error(1)
}

func (m *MockRepository) MarkSyncedFileStatus(id int64, status models.FileSyncStatus) error {
	args := m.Called(id, status)
	return args.Error(0)
}

// MockEngine is a mock implementation of SyncEngine interface
type MockEngine struct {
	mock.Mock
}

var _ SyncEngine = (*MockEngine)(nil)

func (m *MockEngine) SyncConnection(ctx context.Context, conn *models.Connection, projectID int64) (*models.SyncResult, error) {
	args := m.Called(ctx, conn, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SyncResult), args.Error(1)
}

// MockClient is a mock implementation of providers.Client interface
type MockClient struct {
	mock.Mock
}

var _ providers.Client = (*MockClient)(nil)

func (m *MockClient) ListFiles(ctx context.Context, folderID string) ([]models.CloudFile, error) {
	args := m.Called(ctx, folderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CloudFile), args.Error(1)
}

func (m *MockClient) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	args := m.Called(ctx, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockClient) GetFileMetadata(ctx context.Context, fileID string) (*models.CloudFile, error) {
	args := m.Called(ctx, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CloudFile), args.Error(1)
}

func (m *MockClient) GetUserInfo(ctx context.Context) (*providers.UserInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providers.UserInfo), args.Error(1)
}

func (m *MockClient) RefreshAccessToken(ctx context.Context) (*providers.TokenPair, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providers.TokenPair), args.Error(1)
}

func newTestService(repo ConnectionRepository, engine SyncEngine, newClient ClientFactory) *ConnectionService {
	return &ConnectionService{
		repo:      repo,
		engine:    engine,
		registry:  providers.NewRegistry(),
		newClient: newClient,
		states:    newAuthStateStore(),
		baseURL:   "http://localhost:3000",
		logger:    slog.Default(),
	}
}

// ==================== TESTS ====================

func TestConnectionService_ListProviders(t *testing.T) {
	service := newTestService(new(MockRepository), new(MockEngine), nil)

	infos := service.ListProviders()

	assert.Len(t, infos, 3)
	ids := make([]string, 0, len(infos))
	for _, info := range infos {
		ids = append(ids, info.ID)
	}
	assert.Contains(t, ids, providers.ProviderGoogleDrive)
	assert.Contains(t, ids, providers.ProviderOneDrive)
	assert.Contains(t, ids, providers.ProviderDropbox)
}

func TestConnectionService_StartAuthorization(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_ID", "test-client-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "test-secret")

	service := newTestService(new(MockRepository), new(MockEngine), nil)

	authURL, err := service.StartAuthorization(providers.ProviderGoogleDrive, 42, "root-folder")

	assert.NoError(t, err)
	assert.Contains(t, authURL, "accounts.google.com")
	assert.Contains(t, authURL, "client_id=test-client-id")
	assert.Contains(t, authURL, "state=")
	assert.Contains(t, authURL, "access_type=offline")
}

func TestConnectionService_StartAuthorization_UnknownProvider(t *testing.T) {
	service := newTestService(new(MockRepository), new(MockEngine), nil)

	_, err := service.StartAuthorization("box", 1, "")

	assert.Error(t, err)
	assert.ErrorIs(t, err, providers.ErrUnknownProvider)
}

func TestConnectionService_StartAuthorization_MissingCredentials(t *testing.T) {
	t.Setenv("DROPBOX_CLIENT_ID", "")

	service := newTestService(new(MockRepository), new(MockEngine), nil)

	_, err := service.StartAuthorization(providers.ProviderDropbox, 1, "")

	assert.Error(t, err)
	var confErr *providers.ConfigurationError
	assert.ErrorAs(t, err, &confErr)
}

func TestConnectionService_CompleteAuthorization_InvalidState(t *testing.T) {
	tests := []struct {
		name  string
		setup func(s *ConnectionService) string
	}{
		{
			name: "Unknown state",
			setup: func(s *ConnectionService) string {
				return "never-issued"
			},
		},
		{
			name: "Provider mismatch",
			setup: func(s *ConnectionService) string {
				return s.states.Create(providers.ProviderDropbox, 1, "")
			},
		},
		{
			name: "Already consumed state",
			setup: func(s *ConnectionService) string {
				state := s.states.Create(providers.ProviderGoogleDrive, 1, "")
				s.states.Consume(state)
				return state
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := newTestService(new(MockRepository), new(MockEngine), nil)
			state := tt.setup(service)

			conn, err := service.CompleteAuthorization(context.Background(), providers.ProviderGoogleDrive, state, "code")

			assert.Nil(t, conn)
			assert.ErrorIs(t, err, ErrInvalidState)
		})
	}
}

func TestConnectionService_GetConnection(t *testing.T) {
	tests := []struct {
		name          string
		id            int64
		mockSetup     func(*MockRepository)
		expectedError error
	}{
		{
			name: "Success",
			id:   1,
			mockSetup: func(repo *MockRepository) {
				repo.On("GetConnection", int64(1)).Return(&models.Connection{ID: 1, Provider: "google"}, nil)
			},
		},
		{
			name: "Not found",
			id:   2,
			mockSetup: func(repo *MockRepository) {
				repo.On("GetConnection", int64(2)).Return(nil, nil)
			},
			expectedError: ErrConnectionNotFound,
		},
		{
			name: "Repository error",
			id:   3,
			mockSetup: func(repo *MockRepository) {
				repo.On("GetConnection", int64(3)).Return(nil, errors.New("database error"))
			},
			expectedError: errors.New("database error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockRepository)
			tt.mockSetup(mockRepo)
			service := newTestService(mockRepo, new(MockEngine), nil)

			conn, err := service.GetConnection(tt.id)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError.Error(), err.Error())
				assert.Nil(t, conn)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, conn)
				assert.Equal(t, tt.id, conn.ID)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestConnectionService_ListConnections(t *testing.T) {
	mockRepo := new(MockRepository)
	mockRepo.On("ListConnections").Return([]models.Connection{{ID: 1}, {ID: 2}}, nil)
	mockRepo.On("ListConnectionsByProject", int64(7)).Return([]models.Connection{{ID: 2}}, nil)

	service := newTestService(mockRepo, new(MockEngine), nil)

	all, err := service.ListConnections(0)
	assert.NoError(t, err)
	assert.Len(t, all, 2)

	scoped, err := service.ListConnections(7)
	assert.NoError(t, err)
	assert.Len(t, scoped, 1)

	mockRepo.AssertExpectations(t)
}

func TestConnectionService_TriggerSync(t *testing.T) {
	conn := &models.Connection{ID: 5, ProjectID: 7, Provider: "dropbox"}

	mockRepo := new(MockRepository)
	mockRepo.On("GetConnection", int64(5)).Return(conn, nil)

	mockEngine := new(MockEngine)
	mockEngine.On("SyncConnection", mock.Anything, conn, int64(7)).
		Return(&models.SyncResult{Added: 2, Updated: 1}, nil)

	service := newTestService(mockRepo, mockEngine, nil)

	result, err := service.TriggerSync(context.Background(), 5, 7)

	assert.NoError(t, err)
	assert.Equal(t, 2, result.Added)
	assert.Equal(t, 1, result.Updated)
	mockRepo.AssertExpectations(t)
	mockEngine.AssertExpectations(t)
}

func TestConnectionService_TriggerSync_ConnectionNotFound(t *testing.T) {
	mockRepo := new(MockRepository)
	mockRepo.On("GetConnection", int64(99)).Return(nil, nil)

	service := newTestService(mockRepo, new(MockEngine), nil)

	_, err := service.TriggerSync(context.Background(), 99, 0)

	assert.ErrorIs(t, err, ErrConnectionNotFound)
	mockRepo.AssertExpectations(t)
}

func TestConnectionService_DownloadFile(t *testing.T) {
	conn := &models.Connection{ID: 1, Provider: "google", AccessToken: "token"}
	file := &models.SyncedFile{ID: 10, ConnectionID: 1, CloudFileID: "cloud-1", MimeType: "text/plain"}

	mockRepo := new(MockRepository)
	mockRepo.On("GetConnection", int64(1)).Return(conn, nil)
	mockRepo.On("GetSyncedFile", int64(10)).Return(file, nil)
	mockRepo.On("MarkSyncedFileStatus", int64(10), models.FileSyncStatusSynced).Return(nil)

	mockClient := new(MockClient)
	mockClient.On("DownloadFile", mock.Anything, "cloud-1").Return([]byte("hello"), nil)

	service := newTestService(mockRepo, new(MockEngine), func(c *models.Connection) (providers.Client, error) {
		return mockClient, nil
	})

	data, mimeType, err := service.DownloadFile(context.Background(), 1, 10)

	assert.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
	assert.Equal(t, "text/plain", mimeType)
	mockRepo.AssertExpectations(t)
	mockClient.AssertExpectations(t)
}

func TestConnectionService_DownloadFile_WrongConnection(t *testing.T) {
	conn := &models.Connection{ID: 1, Provider: "google"}
	file := &models.SyncedFile{ID: 10, ConnectionID: 2, CloudFileID: "cloud-1"}

	mockRepo := new(MockRepository)
	mockRepo.On("GetConnection", int64(1)).Return(conn, nil)
	mockRepo.On("GetSyncedFile", int64(10)).Return(file, nil)

	service := newTestService(mockRepo, new(MockEngine), nil)

	_, _, err := service.DownloadFile(context.Background(), 1, 10)

	assert.ErrorIs(t, err, ErrFileNotFound)
	mockRepo.AssertExpectations(t)
}

func TestAuthStateStore_Expiry(t *testing.T) {
	store := newAuthStateStore()
	state := store.Create("google", 1, "")

	store.mu.Lock()
	pending := store.states[state]
	pending.CreatedAt = time.Now().Add(-authStateTTL - time.Minute)
	store.states[state] = pending
	store.mu.Unlock()

	_, ok := store.Consume(state)
	assert.False(t, ok)
}
