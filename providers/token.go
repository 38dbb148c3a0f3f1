package providers

import (
	"context"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"cloudsync/models"
)

// expiryBuffer is the safety margin before actual token expiry at which
// a proactive refresh is triggered
const expiryBuffer = 5 * time.Minute

// ensureValidToken runs before every provider API call.
//
// A connection without any access token is invalid and fails
// immediately. When the recorded expiry is within the buffer, the token
// is refreshed, persisted back onto the connection record, and used for
// the call. Refresh attempts are serialized through mu: refreshing twice
// invalidates the first new token on some providers.
func ensureValidToken(ctx context.Context, conn *models.Connection, store TokenStore, mu *sync.Mutex, refresh func(context.Context) (*TokenPair, error)) error {
	if conn.AccessToken == "" {
		return ErrNoAccessToken
	}
	if conn.TokenExpiresAt.IsZero() {
		return nil
	}

	mu.Lock()
	defer mu.Unlock()

	// Re-check under the lock: a parallel caller may have refreshed already
	if time.Until(conn.TokenExpiresAt) >= expiryBuffer {
		return nil
	}

	pair, err := refresh(ctx)
	if err != nil {
		return err
	}

	conn.AccessToken = pair.AccessToken
	conn.TokenExpiresAt = pair.ExpiresAt
	return store.UpdateConnectionTokens(conn.ID, pair.AccessToken, pair.ExpiresAt)
}

// refreshGrant exchanges a refresh token at the provider's token
// endpoint. The auth style comes from the provider config: Dropbox sends
// client credentials via HTTP Basic auth, Google and Microsoft as body
// parameters. This difference is deliberate, not to be normalized away.
func refreshGrant(ctx context.Context, cfg Config, conn *models.Connection) (*TokenPair, error) {
	if conn.RefreshToken == "" {
		return nil, ErrNoRefreshToken
	}

	clientID, clientSecret, err := cfg.credentials()
	if err != nil {
		return nil, err
	}

	oc := cfg.oauthConfig(clientID, clientSecret, "")
	src := oc.TokenSource(ctx, &oauth2.Token{RefreshToken: conn.RefreshToken})

	tok, err := src.Token()
	if err != nil {
		return nil, wrapTokenError(cfg.ID, err)
	}

	pair := pairFromToken(tok)
	pair.RefreshToken = "" // refresh responses do not rotate the refresh token here
	return pair, nil
}
