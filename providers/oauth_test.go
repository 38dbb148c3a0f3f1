package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// testRegistry builds a single-provider registry whose token endpoint
// points at a local test server
func testRegistry(tokenURL string, authStyle oauth2.AuthStyle) *Registry {
	return &Registry{configs: map[string]Config{
		"test": {
			ID:              "test",
			DisplayName:     "Test Provider",
			AuthURL:         "https://auth.example.com/authorize",
			TokenURL:        tokenURL,
			AuthStyle:       authStyle,
			Scopes:          []string{"files.read"},
			ClientIDEnv:     "TEST_CLIENT_ID",
			ClientSecretEnv: "TEST_CLIENT_SECRET",
		},
	}}
}

func TestBuildAuthorizationURL(t *testing.T) {
	t.Setenv("TEST_CLIENT_ID", "client-123")

	reg := testRegistry("https://token.example.com/token", oauth2.AuthStyleInParams)

	rawURL, err := BuildAuthorizationURL(reg, "test", "state-abc", "http://localhost:3000/auth/test/callback")
	require.NoError(t, err)

	parsed, err := url.Parse(rawURL)
	require.NoError(t, err)

	assert.Equal(t, "auth.example.com", parsed.Host)
	q := parsed.Query()
	assert.Equal(t, "client-123", q.Get("client_id"))
	assert.Equal(t, "state-abc", q.Get("state"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "files.read", q.Get("scope"))
	assert.Equal(t, "http://localhost:3000/auth/test/callback", q.Get("redirect_uri"))
	assert.Equal(t, "offline", q.Get("access_type"))
}

func TestBuildAuthorizationURL_MissingClientID(t *testing.T) {
	t.Setenv("TEST_CLIENT_ID", "")

	reg := testRegistry("https://token.example.com/token", oauth2.AuthStyleInParams)

	_, err := BuildAuthorizationURL(reg, "test", "state", "http://localhost/cb")

	var confErr *ConfigurationError
	require.ErrorAs(t, err, &confErr)
	assert.Equal(t, "test", confErr.Provider)
	assert.Equal(t, "TEST_CLIENT_ID", confErr.Key)
}

func TestBuildAuthorizationURL_UnknownProvider(t *testing.T) {
	reg := NewRegistry()

	_, err := BuildAuthorizationURL(reg, "box", "state", "http://localhost/cb")

	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestExchangeCode(t *testing.T) {
	t.Setenv("TEST_CLIENT_ID", "client-123")
	t.Setenv("TEST_CLIENT_SECRET", "secret-456")

	var gotGrantType, gotCode string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotGrantType = r.FormValue("grant_type")
		gotCode = r.FormValue("code")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"access_token": "at-1",
			"refresh_token": "rt-1",
			"token_type": "Bearer",
			"expires_in": 3600
		}`))
	}))
	defer srv.Close()

	reg := testRegistry(srv.URL, oauth2.AuthStyleInParams)

	pair, err := ExchangeCode(context.Background(), reg, "test", "auth-code", "http://localhost/cb")
	require.NoError(t, err)

	assert.Equal(t, "authorization_code", gotGrantType)
	assert.Equal(t, "auth-code", gotCode)
	assert.Equal(t, "at-1", pair.AccessToken)
	assert.Equal(t, "rt-1", pair.RefreshToken)
	assert.WithinDuration(t, time.Now().Add(time.Hour), pair.ExpiresAt, 10*time.Second)
}

func TestExchangeCode_DefaultLifetime(t *testing.T) {
	t.Setenv("TEST_CLIENT_ID", "client-123")
	t.Setenv("TEST_CLIENT_SECRET", "secret-456")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token": "at-1", "token_type": "Bearer"}`))
	}))
	defer srv.Close()

	reg := testRegistry(srv.URL, oauth2.AuthStyleInParams)

	pair, err := ExchangeCode(context.Background(), reg, "test", "auth-code", "http://localhost/cb")
	require.NoError(t, err)

	// No expires_in in the response: assume one hour
	assert.WithinDuration(t, time.Now().Add(defaultTokenLifetime), pair.ExpiresAt, 10*time.Second)
}

func TestExchangeCode_ProviderRejects(t *testing.T) {
	t.Setenv("TEST_CLIENT_ID", "client-123")
	t.Setenv("TEST_CLIENT_SECRET", "secret-456")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "invalid_grant"}`))
	}))
	defer srv.Close()

	reg := testRegistry(srv.URL, oauth2.AuthStyleInParams)

	_, err := ExchangeCode(context.Background(), reg, "test", "bad-code", "http://localhost/cb")

	var exchErr *TokenExchangeError
	require.ErrorAs(t, err, &exchErr)
	assert.Equal(t, "test", exchErr.Provider)
	assert.Equal(t, http.StatusBadRequest, exchErr.StatusCode)
	assert.Contains(t, exchErr.Body, "invalid_grant")
}

func TestExchangeCode_MissingSecret(t *testing.T) {
	t.Setenv("TEST_CLIENT_ID", "client-123")
	t.Setenv("TEST_CLIENT_SECRET", "")

	reg := testRegistry("https://token.example.com/token", oauth2.AuthStyleInParams)

	_, err := ExchangeCode(context.Background(), reg, "test", "code", "http://localhost/cb")

	var confErr *ConfigurationError
	require.ErrorAs(t, err, &confErr)
	assert.Equal(t, "TEST_CLIENT_SECRET", confErr.Key)
}
