package providers

import (
	"errors"
	"fmt"
)

// Credential errors. Both mean the connection needs re-authorization by
// the user; nothing can be recovered programmatically.
var (
	ErrNoAccessToken  = errors.New("connection has no access token")
	ErrNoRefreshToken = errors.New("connection has no refresh token")
)

// ErrUnknownProvider indicates a connection references a provider that is
// not in the registry
var ErrUnknownProvider = errors.New("unknown provider")

// ConfigurationError means a required OAuth client credential is missing
// from the environment. Fails fast, never retried.
type ConfigurationError struct {
	Provider string
	Key      string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: missing required environment variable %s", e.Provider, e.Key)
}

// TokenExchangeError is a non-2xx response from a provider's token
// endpoint. Carries the status and raw body for diagnostics.
type TokenExchangeError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *TokenExchangeError) Error() string {
	return fmt.Sprintf("%s: token endpoint returned HTTP %d: %s", e.Provider, e.StatusCode, e.Body)
}

// APIError is a non-2xx response from a provider's API
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: API returned HTTP %d: %s", e.Provider, e.StatusCode, e.Body)
}
