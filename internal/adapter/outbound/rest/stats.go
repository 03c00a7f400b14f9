package rest

import (
	"context"
	"errors"
	"net/http"
)

var errInvalidWinner = errors.New("winner team must be A or B")

// GetUserStats fetches one player's statistics, including rating history
// and play volume for chart rendering.
func (c *Client) GetUserStats(ctx context.Context, userID string) (*PlayerStats, error) {
	var stats PlayerStats
	if err := c.do(ctx, http.MethodGet, "/users/"+userID+"/stats", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
