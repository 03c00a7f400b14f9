// Package state provides file-based persistence for the courtside credential
// record.
//
// The credentials.json file stores the serialized session credential so it
// survives process restarts. This package provides atomic writes, file
// locking, backups, and the token mirror file consumed by the command gate.
package state

import (
	"time"

	"github.com/courtside-hq/courtside/internal/domain/auth"
)

// CredentialState is the top-level structure persisted in credentials.json.
type CredentialState struct {
	// Version is the schema version for forward compatibility. Currently "1".
	Version string `json:"version"`

	// AccessToken is the current short-lived bearer token.
	AccessToken string `json:"access_token,omitempty"`

	// RefreshToken is the current long-lived refresh token.
	RefreshToken string `json:"refresh_token,omitempty"`

	// User is the cached profile of the logged-in player.
	User *auth.User `json:"user,omitempty"`

	// Authenticated is true while a login is active.
	Authenticated bool `json:"authenticated"`

	// OAuthState is the pending identity-provider state parameter, set just
	// before redirecting to the provider and cleared once verified.
	OAuthState string `json:"oauth_state,omitempty"`

	// CreatedAt is when this credential file was first created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when this credential file was last modified.
	UpdatedAt time.Time `json:"updated_at"`
}

// Credential converts the persisted record into a domain snapshot.
func (s *CredentialState) Credential() auth.Credential {
	return auth.Credential{
		AccessToken:   s.AccessToken,
		RefreshToken:  s.RefreshToken,
		User:          s.User,
		Authenticated: s.Authenticated,
	}
}

// SetCredential overwrites the token and profile fields from a domain
// snapshot, leaving Version, OAuthState, and timestamps to the store.
func (s *CredentialState) SetCredential(cred auth.Credential) {
	s.AccessToken = cred.AccessToken
	s.RefreshToken = cred.RefreshToken
	s.User = cred.User
	s.Authenticated = cred.Authenticated
}
