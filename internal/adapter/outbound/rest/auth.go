package rest

import (
	"context"
	"net/http"
	"net/url"

	"github.com/courtside-hq/courtside/internal/domain/auth"
)

// Login authenticates with email and password and returns the token grant.
// It does not mutate the credential store; committing the grant (and the
// fetched profile) is the caller's decision.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	if err := c.validateInput(req); err != nil {
		return nil, err
	}
	var tok TokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, req, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

// Register creates a new account and returns the created profile. The
// backend issues no tokens here; follow with Login to obtain the grant.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*auth.User, error) {
	if err := c.validateInput(req); err != nil {
		return nil, err
	}
	var user auth.User
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Me fetches the logged-in player's profile.
func (c *Client) Me(ctx context.Context) (*auth.User, error) {
	var user auth.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// MeWithToken fetches the profile using an explicit token instead of the
// credential store, for the window right after a token grant before the
// store has been committed. No refresh-retry applies.
func (c *Client) MeWithToken(ctx context.Context, token string) (*auth.User, error) {
	status, body, err := c.send(ctx, http.MethodGet, "/auth/me", nil, nil, token)
	if err != nil {
		return nil, &ServerUnreachableError{Cause: err}
	}
	if status < 200 || status >= 300 {
		return nil, &APIError{Status: status, Detail: errorDetail(body), Method: http.MethodGet, Path: "/auth/me"}
	}
	var user auth.User
	if err := unmarshalBody(body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile edits the logged-in player's profile and returns the
// updated copy.
func (c *Client) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*auth.User, error) {
	if err := c.validateInput(req); err != nil {
		return nil, err
	}
	var user auth.User
	if err := c.do(ctx, http.MethodPatch, "/auth/me", nil, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ProviderLogin fetches the identity-provider login descriptor: the URL for
// the player to open in a browser and the one-time state parameter.
func (c *Client) ProviderLogin(ctx context.Context) (*ProviderLoginResponse, error) {
	var resp ProviderLoginResponse
	if err := c.do(ctx, http.MethodGet, "/auth/line/login", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ProviderCallback exchanges the provider's authorization code for a token
// grant. state must be the verified one-time value from ProviderLogin.
func (c *Client) ProviderCallback(ctx context.Context, code, state string) (*TokenResponse, error) {
	q := url.Values{}
	q.Set("code", code)
	q.Set("state", state)
	var tok TokenResponse
	if err := c.do(ctx, http.MethodGet, "/auth/line/callback", q, nil, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}
