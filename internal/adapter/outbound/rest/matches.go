package rest

import (
	"context"
	"net/http"
	"net/url"
)

// ListMatches fetches a session's matches.
func (c *Client) ListMatches(ctx context.Context, sessionID string) ([]Match, error) {
	var matches []Match
	if err := c.do(ctx, http.MethodGet, "/sessions/"+sessionID+"/matches", nil, nil, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

// GetMatch fetches one match.
func (c *Client) GetMatch(ctx context.Context, matchID string) (*Match, error) {
	var match Match
	if err := c.do(ctx, http.MethodGet, "/matches/"+matchID, nil, nil, &match); err != nil {
		return nil, err
	}
	return &match, nil
}

// CreateMatch generates a match inside a session.
func (c *Client) CreateMatch(ctx context.Context, sessionID string, req CreateMatchRequest) (*Match, error) {
	if err := c.validateInput(req); err != nil {
		return nil, err
	}
	var match Match
	if err := c.do(ctx, http.MethodPost, "/sessions/"+sessionID+"/matches", nil, req, &match); err != nil {
		return nil, err
	}
	return &match, nil
}

// AutoCreateMatch asks the backend to build a fair doubles match from
// the session's registered players. Requires at least 4 confirmed
// registrations; fewer come back as an invalid-input error.
func (c *Client) AutoCreateMatch(ctx context.Context, sessionID string) (*Match, error) {
	var match Match
	if err := c.do(ctx, http.MethodPost, "/sessions/"+sessionID+"/matches", nil, nil, &match); err != nil {
		return nil, err
	}
	return &match, nil
}

// StartMatch moves a scheduled match to ongoing.
func (c *Client) StartMatch(ctx context.Context, matchID string) error {
	return c.do(ctx, http.MethodPost, "/matches/"+matchID+"/start", nil, nil, nil)
}

// UpdateScore records the current score of an ongoing match.
func (c *Client) UpdateScore(ctx context.Context, matchID string, req ScoreRequest) error {
	if err := c.validateInput(req); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPatch, "/matches/"+matchID+"/score", nil, req, nil)
}

// CompleteMatch finishes a match. winner is "A" or "B", passed as a query
// parameter per the backend contract.
func (c *Client) CompleteMatch(ctx context.Context, matchID, winner string) error {
	if winner != "A" && winner != "B" {
		return &ValidationError{Cause: errInvalidWinner}
	}
	q := url.Values{}
	q.Set("winner_team", winner)
	return c.do(ctx, http.MethodPost, "/matches/"+matchID+"/complete", q, nil, nil)
}
