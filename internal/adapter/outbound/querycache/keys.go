package querycache

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Cache keys are "<resource>" or "<resource>:<id>". Invalidation targets
// either an exact key or a resource prefix, never the whole cache.

// KeyMe is the cached profile of the logged-in player.
const KeyMe = "me"

// KeyClubs is the list of the player's clubs.
const KeyClubs = "clubs"

// KeyClub returns the key for a single club.
func KeyClub(clubID string) string { return "club:" + clubID }

// KeySessions returns the key for a club's session list.
func KeySessions(clubID string) string { return "sessions:" + clubID }

// KeySession returns the key for a single play session with registrations.
func KeySession(sessionID string) string { return "session:" + sessionID }

// KeyMatches returns the key for a session's match list.
func KeyMatches(sessionID string) string { return "matches:" + sessionID }

// KeyMatch returns the key for a single match.
func KeyMatch(matchID string) string { return "match:" + matchID }

// KeyLeaderboard returns the key for a club's leaderboard.
func KeyLeaderboard(clubID string) string { return "leaderboard:" + clubID }

// KeyClubStats returns the key for a club's aggregate statistics.
func KeyClubStats(clubID string) string { return "clubstats:" + clubID }

// KeyUserStats returns the key for a player's statistics.
func KeyUserStats(userID string) string { return "userstats:" + userID }

// WithParams appends a short hash of extra query parameters to a key, so
// differently-parameterized fetches of the same resource cache separately.
func WithParams(key string, params ...string) string {
	if len(params) == 0 {
		return key
	}
	h := xxhash.New()
	for _, p := range params {
		_, _ = h.WriteString(p)
		_, _ = h.WriteString("\x00")
	}
	return fmt.Sprintf("%s#%x", key, h.Sum64())
}

// MatchesPrefix reports whether key belongs to the given resource prefix.
// "session" matches "session:abc" and "session:abc#1f2e" but not
// "sessions:abc".
func MatchesPrefix(key, prefix string) bool {
	return key == prefix ||
		strings.HasPrefix(key, prefix+":") ||
		strings.HasPrefix(key, prefix+"#")
}
