package rest

import (
	"context"
	"net/http"
)

// ListClubs fetches the player's clubs.
func (c *Client) ListClubs(ctx context.Context) ([]Club, error) {
	var clubs []Club
	if err := c.do(ctx, http.MethodGet, "/clubs", nil, nil, &clubs); err != nil {
		return nil, err
	}
	return clubs, nil
}

// GetClub fetches one club with its member list.
func (c *Client) GetClub(ctx context.Context, clubID string) (*ClubDetail, error) {
	var club ClubDetail
	if err := c.do(ctx, http.MethodGet, "/clubs/"+clubID, nil, nil, &club); err != nil {
		return nil, err
	}
	return &club, nil
}

// CreateClub creates a new club owned by the logged-in player.
func (c *Client) CreateClub(ctx context.Context, req CreateClubRequest) (*Club, error) {
	if err := c.validateInput(req); err != nil {
		return nil, err
	}
	var club Club
	if err := c.do(ctx, http.MethodPost, "/clubs", nil, req, &club); err != nil {
		return nil, err
	}
	return &club, nil
}

// JoinClub joins the logged-in player to a club.
func (c *Client) JoinClub(ctx context.Context, clubID string) error {
	return c.do(ctx, http.MethodPost, "/clubs/"+clubID+"/join", nil, nil, nil)
}

// GetClubStats fetches a club's aggregate statistics.
func (c *Client) GetClubStats(ctx context.Context, clubID string) (*ClubStats, error) {
	var stats ClubStats
	if err := c.do(ctx, http.MethodGet, "/clubs/"+clubID+"/stats", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetLeaderboard fetches a club's player ranking.
func (c *Client) GetLeaderboard(ctx context.Context, clubID string) ([]PlayerStats, error) {
	var rows []PlayerStats
	if err := c.do(ctx, http.MethodGet, "/clubs/"+clubID+"/leaderboard", nil, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
