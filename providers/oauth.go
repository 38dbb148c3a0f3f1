package providers

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/oauth2"
)

// defaultTokenLifetime is assumed when a provider omits expires_in
const defaultTokenLifetime = time.Hour

// TokenPair is the result of an authorization-code exchange or a refresh.
// RefreshToken is empty on refreshes and on subsequent grants from
// providers that only issue it once.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// BuildAuthorizationURL constructs the provider's authorization URL for
// the given anti-CSRF state token and redirect URI. No network call.
//
// The offline-access flag is always included, even for providers that
// ignore it; this keeps URL construction uniform across providers.
func BuildAuthorizationURL(reg *Registry, providerID, state, redirectURI string) (string, error) {
	cfg, err := reg.Get(providerID)
	if err != nil {
		return "", err
	}

	clientID := os.Getenv(cfg.ClientIDEnv)
	if clientID == "" {
		return "", &ConfigurationError{Provider: providerID, Key: cfg.ClientIDEnv}
	}

	oc := cfg.oauthConfig(clientID, "", redirectURI)
	return oc.AuthCodeURL(state, oauth2.AccessTypeOffline), nil
}

// ExchangeCode POSTs an authorization_code grant to the provider's token
// endpoint. One-shot: the caller is an HTTP redirect handler and surfaces
// any failure directly to the end user.
func ExchangeCode(ctx context.Context, reg *Registry, providerID, code, redirectURI string) (*TokenPair, error) {
	cfg, err := reg.Get(providerID)
	if err != nil {
		return nil, err
	}

	clientID, clientSecret, err := cfg.credentials()
	if err != nil {
		return nil, err
	}

	oc := cfg.oauthConfig(clientID, clientSecret, redirectURI)
	tok, err := oc.Exchange(ctx, code, oauth2.AccessTypeOffline)
	if err != nil {
		return nil, wrapTokenError(providerID, err)
	}

	return pairFromToken(tok), nil
}

// credentials reads the client id and secret from the environment keys
// named in the config, failing fast when either is absent
func (c Config) credentials() (string, string, error) {
	clientID := os.Getenv(c.ClientIDEnv)
	if clientID == "" {
		return "", "", &ConfigurationError{Provider: c.ID, Key: c.ClientIDEnv}
	}
	clientSecret := os.Getenv(c.ClientSecretEnv)
	if clientSecret == "" {
		return "", "", &ConfigurationError{Provider: c.ID, Key: c.ClientSecretEnv}
	}
	return clientID, clientSecret, nil
}

func pairFromToken(tok *oauth2.Token) *TokenPair {
	expiresAt := tok.Expiry
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(defaultTokenLifetime)
	}
	return &TokenPair{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    expiresAt,
	}
}

// wrapTokenError converts oauth2 retrieval failures into
// TokenExchangeError, preserving the HTTP status and raw response body
func wrapTokenError(providerID string, err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		status := 0
		if re.Response != nil {
			status = re.Response.StatusCode
		}
		return &TokenExchangeError{
			Provider:   providerID,
			StatusCode: status,
			Body:       string(re.Body),
		}
	}
	return err
}
