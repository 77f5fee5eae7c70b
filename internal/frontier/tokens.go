package frontier

import (
	"fmt"
	"sync"
)

// Settings keys for the persisted token pair.
const (
	accessTokenKey  = "frontier.access_token"
	refreshTokenKey = "frontier.refresh_token"
)

// Credentials is the persisted session token pair. The access token is
// treated as valid until a request proves otherwise; no expiry is tracked.
type Credentials struct {
	AccessToken  string
	RefreshToken string
}

// TokenStore owns the session credentials. Reads are concurrent-safe; the
// active login flow is the single writer. Credentials returned always
// reflect the last successful SetCredentials, including across restarts.
type TokenStore struct {
	mu       sync.RWMutex
	settings Settings
}

func NewTokenStore(settings Settings) *TokenStore {
	return &TokenStore{settings: settings}
}

// Credentials returns the stored token pair. The second return is false
// when no access token is stored, meaning "logged out".
func (s *TokenStore) Credentials() (Credentials, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	access, ok := s.settings.Get(accessTokenKey)
	if !ok || access == "" {
		return Credentials{}, false
	}
	refresh, _ := s.settings.Get(refreshTokenKey)
	return Credentials{AccessToken: access, RefreshToken: refresh}, true
}

// SetCredentials overwrites the token pair atomically with respect to
// readers. Persistence is synchronous; an error means durable storage does
// not hold the new pair.
func (s *TokenStore) SetCredentials(accessToken, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.settings.Set(accessTokenKey, accessToken); err != nil {
		return fmt.Errorf("failed to persist access token: %w", err)
	}
	if err := s.settings.Set(refreshTokenKey, refreshToken); err != nil {
		return fmt.Errorf("failed to persist refresh token: %w", err)
	}
	return nil
}

// Clear removes the stored token pair, logging the session out.
func (s *TokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.settings.Delete(accessTokenKey); err != nil {
		return fmt.Errorf("failed to clear access token: %w", err)
	}
	if err := s.settings.Delete(refreshTokenKey); err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}
	return nil
}

// LoggedIn reports whether an access token is stored.
func (s *TokenStore) LoggedIn() bool {
	_, ok := s.Credentials()
	return ok
}
