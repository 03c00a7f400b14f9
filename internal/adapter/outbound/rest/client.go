// Package rest implements the authenticated HTTP client for the courtside
// backend API.
//
// Every outbound call attaches the current access token from the credential
// store at send time. A 401 on a protected call triggers exactly one
// single-flight token refresh; on success the original request is resent
// once with the new token, on failure the store is logged out and the
// original error propagates. Login and refresh endpoints never trigger the
// refresh cycle.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"

	"github.com/courtside-hq/courtside/internal/metrics"
)

// DefaultTimeout is the per-request timeout when none is configured.
const DefaultTimeout = 15 * time.Second

// refreshTimeout bounds the shared refresh call independently of the
// callers' contexts, so a cancelled caller cannot abort a refresh other
// callers are waiting on.
const refreshTimeout = 10 * time.Second

// CredentialSource is the auth-state surface the client needs. It is
// satisfied by *auth.Store; tests substitute fakes.
type CredentialSource interface {
	AccessToken() string
	RefreshToken() string
	SetTokens(accessToken, refreshToken string)
	Logout()
}

// Client is the courtside API client.
type Client struct {
	baseURL    string
	creds      CredentialSource
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
	metrics    *metrics.Metrics
	validate   *validator.Validate

	// refreshGroup guarantees at most one in-flight token refresh; all
	// concurrent 401 handlers share its outcome.
	refreshGroup singleflight.Group
}

// NewClient creates a courtside API client for the given base URL, reading
// and updating credentials through creds.
func NewClient(baseURL string, creds CredentialSource, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		creds:    creds,
		timeout:  DefaultTimeout,
		logger:   slog.Default(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	return c
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// isAuthEndpoint reports whether a 401 from this path must never trigger
// the refresh cycle. A 401 from the refresh endpoint itself means the
// refresh token is dead; retrying would recurse forever.
func isAuthEndpoint(path string) bool {
	return strings.Contains(path, "/auth/login") || strings.Contains(path, "/auth/refresh")
}

// do performs an authenticated request with single-flight refresh-and-retry.
// body is JSON-marshalled when non-nil; result is JSON-unmarshalled when
// non-nil. The attempt counter is explicit: a request is resent at most
// once, and only after a refresh produced a new token.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, result any) error {
	token := c.creds.AccessToken()

	for attempt := 0; ; attempt++ {
		status, respBody, err := c.send(ctx, method, path, query, body, token)
		if err != nil {
			c.metrics.IncRequest(method, "unreachable")
			return &ServerUnreachableError{Cause: err}
		}

		if status == http.StatusUnauthorized && attempt == 0 && !isAuthEndpoint(path) {
			newToken := c.refreshAccessToken(ctx)
			if newToken != "" {
				token = newToken
				continue
			}
			// No new token: propagate the original 401 un-retried.
		}

		if status < 200 || status >= 300 {
			c.metrics.IncRequest(method, "error")
			return &APIError{
				Status: status,
				Detail: errorDetail(respBody),
				Method: method,
				Path:   path,
			}
		}

		c.metrics.IncRequest(method, "ok")
		if result != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, result); err != nil {
				return fmt.Errorf("unmarshal response from %s %s: %w", method, path, err)
			}
		}
		return nil
	}
}

// send executes one HTTP round trip with the given bearer token attached
// (or none when empty). Returns the status code and the full response body.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body any, token string) (int, []byte, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response body: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

// refreshAccessToken obtains a new access token via the refresh endpoint.
// Concurrent callers share one in-flight refresh. Returns the new token, or
// an empty string when no token could be obtained; in that case the
// credential store has been logged out (unless there was no refresh token
// to begin with).
func (c *Client) refreshAccessToken(ctx context.Context) string {
	v, _, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		refreshToken := c.creds.RefreshToken()
		if refreshToken == "" {
			return "", nil
		}

		// The refresh outcome is shared by every waiter, so it must not die
		// with the first caller's context.
		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()

		status, respBody, err := c.send(refreshCtx, http.MethodPost, "/auth/refresh", nil,
			refreshRequest{RefreshToken: refreshToken}, "")
		if err != nil || status < 200 || status >= 300 {
			c.logger.Warn("token refresh failed, logging out",
				"status", status, "error", err)
			c.metrics.IncRefresh("failed")
			c.creds.Logout()
			return "", nil
		}

		var tok TokenResponse
		if err := json.Unmarshal(respBody, &tok); err != nil || tok.AccessToken == "" {
			c.logger.Warn("token refresh returned malformed response", "error", err)
			c.metrics.IncRefresh("failed")
			c.creds.Logout()
			return "", nil
		}

		c.creds.SetTokens(tok.AccessToken, tok.RefreshToken)
		c.metrics.IncRefresh("ok")
		c.logger.Debug("access token refreshed")
		return tok.AccessToken, nil
	})
	return v.(string)
}

// validateInput runs client-side payload validation. A failure blocks the
// request before any network call.
func (c *Client) validateInput(payload any) error {
	if err := c.validate.Struct(payload); err != nil {
		return &ValidationError{Cause: err}
	}
	return nil
}

// unmarshalBody decodes a successful response body into result.
func unmarshalBody(body []byte, result any) error {
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// errorDetail extracts the backend's detail message from an error body.
func errorDetail(body []byte) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}
	return strings.TrimSpace(string(body))
}
