// Package oauth drives the identity-provider login flow. The backend
// owns the provider credentials and the token exchange; the client's
// part is the CSRF state round trip: persist the state before the user
// leaves for the provider, verify it on the way back, use it once.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/courtside-hq/courtside/internal/adapter/outbound/rest"
	"github.com/courtside-hq/courtside/internal/adapter/outbound/state"
	"github.com/courtside-hq/courtside/internal/domain/auth"
)

var (
	// ErrNoPendingLogin means Complete was called without a Begin, or the
	// stored state was already consumed.
	ErrNoPendingLogin = errors.New("no provider login in progress")

	// ErrStateMismatch means the state returned by the provider does not
	// match the one stored at Begin time.
	ErrStateMismatch = errors.New("state mismatch, restart the login")
)

// ProviderClient is the slice of the REST client the flow needs.
type ProviderClient interface {
	ProviderLogin(ctx context.Context) (*rest.ProviderLoginResponse, error)
	ProviderCallback(ctx context.Context, code, state string) (*rest.TokenResponse, error)
	MeWithToken(ctx context.Context, token string) (*auth.User, error)
}

// Flow is one provider login attempt. Begin and Complete may run in
// different processes; the state survives in the credential file.
type Flow struct {
	client ProviderClient
	store  *state.CredentialStore
	creds  *auth.Store
	logger *slog.Logger
}

// NewFlow creates a Flow.
func NewFlow(client ProviderClient, store *state.CredentialStore, creds *auth.Store, logger *slog.Logger) *Flow {
	if logger == nil {
		logger = slog.Default()
	}
	return &Flow{client: client, store: store, creds: creds, logger: logger}
}

// Begin asks the backend for the provider login URL, persists the CSRF
// state, and returns the URL for the user to open. When the backend
// sends no state of its own, the client generates one and appends it to
// the URL.
func (f *Flow) Begin(ctx context.Context) (string, error) {
	resp, err := f.client.ProviderLogin(ctx)
	if err != nil {
		return "", fmt.Errorf("request provider login: %w", err)
	}

	loginURL := resp.LoginURL
	csrf := resp.State
	if csrf == "" {
		csrf = uuid.NewString()
		loginURL, err = appendState(loginURL, csrf)
		if err != nil {
			return "", fmt.Errorf("append state to login url: %w", err)
		}
	}

	st, err := f.store.Load()
	if err != nil {
		return "", err
	}
	st.OAuthState = csrf
	if err := f.store.Save(st); err != nil {
		return "", fmt.Errorf("persist login state: %w", err)
	}

	f.logger.Debug("provider login started")
	return loginURL, nil
}

// Complete finishes the flow with what the user pasted back: either the
// full redirect URL or the bare authorization code. The stored state is
// cleared whether the exchange succeeds or not.
func (f *Flow) Complete(ctx context.Context, pasted string) (*auth.User, error) {
	st, err := f.store.Load()
	if err != nil {
		return nil, err
	}
	stored := st.OAuthState
	if stored == "" {
		return nil, ErrNoPendingLogin
	}

	// One-time: consume the state before the exchange.
	st.OAuthState = ""
	if err := f.store.Save(st); err != nil {
		return nil, fmt.Errorf("clear login state: %w", err)
	}

	code, returned, err := parsePasted(pasted)
	if err != nil {
		return nil, err
	}
	if returned != "" && returned != stored {
		return nil, ErrStateMismatch
	}

	tokens, err := f.client.ProviderCallback(ctx, code, stored)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	user, err := f.client.MeWithToken(ctx, tokens.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}

	f.creds.Login(tokens.AccessToken, tokens.RefreshToken, user)
	f.logger.Info("provider login completed", "user_id", user.ID)
	return user, nil
}

// parsePasted accepts either a redirect URL carrying code and state
// query parameters, or a bare authorization code.
func parsePasted(pasted string) (code, returnedState string, err error) {
	pasted = strings.TrimSpace(pasted)
	if pasted == "" {
		return "", "", errors.New("empty authorization code")
	}
	if !strings.Contains(pasted, "://") {
		return pasted, "", nil
	}
	u, err := url.Parse(pasted)
	if err != nil {
		return "", "", fmt.Errorf("parse redirect url: %w", err)
	}
	q := u.Query()
	code = q.Get("code")
	if code == "" {
		return "", "", errors.New("redirect url carries no code parameter")
	}
	return code, q.Get("state"), nil
}

func appendState(rawURL, csrf string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("state", csrf)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
