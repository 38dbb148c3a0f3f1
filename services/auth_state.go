package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// authStateTTL bounds how long an authorization redirect may stay pending
const authStateTTL = 15 * time.Minute

// pendingAuth captures what was requested when the user was redirected
// to the provider, keyed by the anti-CSRF state token
type pendingAuth struct {
	Provider     string
	ProjectID    int64
	RootFolderID string
	CreatedAt    time.Time
}

// authStateStore holds pending authorization states in memory. States
// are single-use: Consume removes them.
type authStateStore struct {
	mu     sync.Mutex
	states map[string]pendingAuth
}

func newAuthStateStore() *authStateStore {
	return &authStateStore{
		states: make(map[string]pendingAuth),
	}
}

// Create stores a new pending authorization and returns its state token
func (s *authStateStore) Create(provider string, projectID int64, rootFolderID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := uuid.New().String()
	s.states[state] = pendingAuth{
		Provider:     provider,
		ProjectID:    projectID,
		RootFolderID: rootFolderID,
		CreatedAt:    time.Now(),
	}
	return state
}

// Consume removes and returns the pending authorization for a state
// token; ok is false for unknown or expired states
func (s *authStateStore) Consume(state string) (pendingAuth, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, exists := s.states[state]
	if !exists {
		return pendingAuth{}, false
	}
	delete(s.states, state)

	if time.Since(pending.CreatedAt) > authStateTTL {
		return pendingAuth{}, false
	}

	return pending, true
}

func (s *authStateStore) cleanupExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for state, pending := range s.states {
		if time.Since(pending.CreatedAt) > authStateTTL {
			delete(s.states, state)
		}
	}
}

// StartCleanupRoutine periodically drops abandoned authorization states
func (s *authStateStore) StartCleanupRoutine() {
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			s.cleanupExpired()
		}
	}()
}
