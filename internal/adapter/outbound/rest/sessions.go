package rest

import (
	"context"
	"net/http"
)

// ListSessions fetches a club's play sessions.
func (c *Client) ListSessions(ctx context.Context, clubID string) ([]Session, error) {
	var sessions []Session
	if err := c.do(ctx, http.MethodGet, "/clubs/"+clubID+"/sessions", nil, nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// GetSession fetches one session together with its registrations.
// The backend exposes these as two resources; the client composes them into
// one detail view.
func (c *Client) GetSession(ctx context.Context, sessionID string) (*SessionDetail, error) {
	var detail SessionDetail
	if err := c.do(ctx, http.MethodGet, "/sessions/"+sessionID, nil, nil, &detail.Session); err != nil {
		return nil, err
	}
	if err := c.do(ctx, http.MethodGet, "/sessions/"+sessionID+"/registrations", nil, nil, &detail.Registrations); err != nil {
		return nil, err
	}
	return &detail, nil
}

// CreateSession schedules a new play session in a club.
func (c *Client) CreateSession(ctx context.Context, clubID string, req CreateSessionRequest) (*Session, error) {
	if err := c.validateInput(req); err != nil {
		return nil, err
	}
	var session Session
	if err := c.do(ctx, http.MethodPost, "/clubs/"+clubID+"/sessions", nil, req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteSession cancels a scheduled session. Organizer/admin only, the
// backend enforces the role.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodDelete, "/sessions/"+sessionID, nil, nil, nil)
}

// OpenRegistration opens a draft session for player registration.
func (c *Client) OpenRegistration(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodPost, "/sessions/"+sessionID+"/open", nil, nil, nil)
}

// RegisterForSession registers the logged-in player. The backend decides
// confirmed versus waitlisted.
func (c *Client) RegisterForSession(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodPost, "/sessions/"+sessionID+"/register", nil, nil, nil)
}

// CancelRegistration cancels the logged-in player's registration; the
// backend promotes from the waitlist as needed.
func (c *Client) CancelRegistration(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodPost, "/sessions/"+sessionID+"/cancel", nil, nil, nil)
}

// CheckIn marks the logged-in player as present at the session.
func (c *Client) CheckIn(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodPost, "/sessions/"+sessionID+"/checkin", nil, nil, nil)
}

// CheckOut marks the logged-in player as departed from the session.
func (c *Client) CheckOut(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodPost, "/sessions/"+sessionID+"/checkout", nil, nil, nil)
}
