// Package auth holds the client-side credential state: who is logged in and
// with what tokens. The Store is the single source of truth for the running
// process; durable persistence is layered on top via the OnChange hook.
package auth

import (
	"sync"
	"time"
)

// User is the profile of the authenticated player as returned by the backend.
type User struct {
	// ID is the backend user identifier (UUID).
	ID string `json:"id"`

	// Email is the login email address.
	Email string `json:"email"`

	// FullName is the player's legal or full name.
	FullName string `json:"full_name"`

	// DisplayName is the optional short name shown on courts and leaderboards.
	DisplayName string `json:"display_name,omitempty"`

	// Phone is the optional contact number.
	Phone string `json:"phone,omitempty"`

	// AvatarURL is the optional profile picture URL.
	AvatarURL string `json:"avatar_url,omitempty"`

	// TotalMatches, Wins, Losses, and Rating are lifetime play statistics.
	TotalMatches int     `json:"total_matches"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	Rating       float64 `json:"rating"`

	// IsActive indicates whether the account is enabled.
	IsActive bool `json:"is_active"`

	// CreatedAt is when the account was created.
	CreatedAt time.Time `json:"created_at"`
}

// Credential is a point-in-time snapshot of the auth state.
// All fields are copies; mutating a snapshot has no effect on the Store.
type Credential struct {
	// AccessToken is the short-lived bearer credential for API calls.
	AccessToken string `json:"access_token"`

	// RefreshToken is the longer-lived credential used to obtain a new
	// access token without re-authentication.
	RefreshToken string `json:"refresh_token"`

	// User is the cached profile, nil when logged out.
	User *User `json:"user,omitempty"`

	// Authenticated is true between Login/SetTokens and Logout.
	Authenticated bool `json:"authenticated"`
}

// Store is the process-wide credential container. Exactly one instance is
// shared across the client, the gate, and the realtime watcher.
//
// All mutations go through Login, SetTokens, SetUser, and Logout; none of
// them can fail. Readers always observe a consistent snapshot.
type Store struct {
	mu       sync.RWMutex
	cred     Credential
	onChange func(Credential)
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithOnChange registers a hook invoked after every mutation with a snapshot
// of the new state. Used to mirror the credential into durable storage and
// the token mirror file in the same operation. The hook runs outside the
// store lock; it must not call back into the Store's mutators.
func WithOnChange(fn func(Credential)) StoreOption {
	return func(s *Store) {
		s.onChange = fn
	}
}

// NewStore creates an empty, unauthenticated Store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore seeds the store from a previously persisted credential, e.g. at
// process start. It does not fire the OnChange hook: the durable record is
// already what we are loading from.
func (s *Store) Restore(cred Credential) {
	s.mu.Lock()
	s.cred = cred
	s.mu.Unlock()
}

// Login stores a full credential set after a successful login, registration,
// or identity-provider callback.
func (s *Store) Login(accessToken, refreshToken string, user *User) {
	s.mu.Lock()
	s.cred = Credential{
		AccessToken:   accessToken,
		RefreshToken:  refreshToken,
		User:          user,
		Authenticated: true,
	}
	snap := s.cred
	s.mu.Unlock()
	s.notify(snap)
}

// SetTokens replaces the access token and, when refreshToken is non-empty,
// the refresh token. An empty refreshToken preserves the existing one
// (the backend rotates refresh tokens, but older deployments do not).
// Used exclusively by the token-refresh path.
func (s *Store) SetTokens(accessToken, refreshToken string) {
	s.mu.Lock()
	s.cred.AccessToken = accessToken
	if refreshToken != "" {
		s.cred.RefreshToken = refreshToken
	}
	s.cred.Authenticated = true
	snap := s.cred
	s.mu.Unlock()
	s.notify(snap)
}

// SetUser replaces the cached profile without touching tokens.
// Used after profile edits.
func (s *Store) SetUser(user *User) {
	s.mu.Lock()
	s.cred.User = user
	s.cred.Authenticated = true
	snap := s.cred
	s.mu.Unlock()
	s.notify(snap)
}

// Logout clears all credential state. Triggered by explicit user action or
// an unrecoverable refresh failure.
func (s *Store) Logout() {
	s.mu.Lock()
	s.cred = Credential{}
	snap := s.cred
	s.mu.Unlock()
	s.notify(snap)
}

// Snapshot returns a copy of the current credential state.
func (s *Store) Snapshot() Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred
}

// AccessToken returns the current access token, empty when logged out.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred.AccessToken
}

// RefreshToken returns the current refresh token, empty when logged out.
func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred.RefreshToken
}

// User returns the cached profile, nil when logged out.
func (s *Store) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred.User
}

// IsAuthenticated reports whether a login has occurred and not been cleared.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred.Authenticated
}

func (s *Store) notify(snap Credential) {
	if s.onChange != nil {
		s.onChange(snap)
	}
}
