package rest

import (
	"time"
)

// TokenResponse is the backend's token grant, returned by login, register,
// provider callback, and refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LoginRequest is the email/password login payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	FullName    string `json:"full_name" validate:"required,max=255"`
	DisplayName string `json:"display_name,omitempty" validate:"omitempty,max=100"`
	Phone       string `json:"phone,omitempty" validate:"omitempty,max=50"`
	PictureURL  string `json:"picture_url,omitempty" validate:"omitempty,url"`
}

// UpdateProfileRequest edits the logged-in player's profile. All fields are
// optional; empty fields are omitted from the PATCH body.
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name,omitempty" validate:"omitempty,max=100"`
	FullName    string `json:"full_name,omitempty" validate:"omitempty,max=255"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	Phone       string `json:"phone,omitempty" validate:"omitempty,max=50"`
}

// ProviderLoginResponse is the identity-provider login redirect descriptor:
// the URL to open in a browser and the one-time state parameter to verify
// on return.
type ProviderLoginResponse struct {
	LoginURL string `json:"login_url"`
	State    string `json:"state"`
}

// Club is a badminton club.
type Club struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	MaxMembers  int       `json:"max_members"`
	IsPublic    bool      `json:"is_public"`
	CreatedAt   time.Time `json:"created_at"`
	MemberCount int       `json:"member_count"`
}

// ClubMember is a club membership row.
type ClubMember struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Role          string    `json:"role"` // owner, moderator, admin, organizer, member
	FullName      string    `json:"full_name"`
	DisplayName   string    `json:"display_name,omitempty"`
	AvatarURL     string    `json:"avatar_url,omitempty"`
	MatchesInClub int       `json:"matches_in_club"`
	RatingInClub  float64   `json:"rating_in_club"`
	JoinedAt      time.Time `json:"joined_at"`
}

// ClubDetail is a club with its member list.
type ClubDetail struct {
	Club
	Members []ClubMember `json:"members"`
}

// CreateClubRequest creates a new club.
type CreateClubRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Slug        string `json:"slug" validate:"required,max=100,lowercase"`
	Description string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Location    string `json:"location,omitempty" validate:"omitempty,max=255"`
	MaxMembers  int    `json:"max_members,omitempty" validate:"omitempty,gt=0"`
	IsPublic    bool   `json:"is_public,omitempty"`
}

// Session is a scheduled play session.
type Session struct {
	ID               string    `json:"id"`
	ClubID           string    `json:"club_id"`
	Title            string    `json:"title"`
	Description      string    `json:"description,omitempty"`
	Location         string    `json:"location"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	MaxParticipants  int       `json:"max_participants"`
	Status           string    `json:"status"` // draft, upcoming, open, full, active, ongoing, completed, cancelled
	CreatedBy        string    `json:"created_by"`
	CreatedAt        time.Time `json:"created_at"`
	ConfirmedCount   int       `json:"confirmed_count"`
	WaitlistCount    int       `json:"waitlist_count"`
	ParticipantCount int       `json:"participant_count,omitempty"`
}

// Registration is a player's registration for a session.
type Registration struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	FullName         string     `json:"full_name"`
	DisplayName      string     `json:"display_name,omitempty"`
	Status           string     `json:"status"` // confirmed, waitlisted, cancelled, attended, no_show
	WaitlistPosition int        `json:"waitlist_position,omitempty"`
	CheckedInAt      *time.Time `json:"checked_in_at,omitempty"`
	CheckedOutAt     *time.Time `json:"checked_out_at,omitempty"`
	RegisteredAt     time.Time  `json:"registered_at"`
}

// SessionDetail is a session with its registration list.
type SessionDetail struct {
	Session
	Registrations []Registration `json:"registrations"`
}

// CreateSessionRequest schedules a new play session.
type CreateSessionRequest struct {
	Title           string    `json:"title" validate:"required,max=255"`
	Description     string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	Location        string    `json:"location" validate:"required,max=255"`
	StartTime       time.Time `json:"start_time" validate:"required"`
	EndTime         time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
	MaxParticipants int       `json:"max_participants" validate:"required,gt=0"`
}

// PlayerSummary identifies one side of a match team.
type PlayerSummary struct {
	ID          string  `json:"id"`
	FullName    string  `json:"full_name"`
	DisplayName string  `json:"display_name,omitempty"`
	AvatarURL   string  `json:"avatar_url,omitempty"`
	Rating      float64 `json:"rating"`
}

// Match is a singles or doubles match within a session.
type Match struct {
	ID            string         `json:"id"`
	SessionID     string         `json:"session_id"`
	CourtNumber   int            `json:"court_number"`
	TeamAPlayer1  PlayerSummary  `json:"team_a_player_1"`
	TeamAPlayer2  *PlayerSummary `json:"team_a_player_2,omitempty"`
	TeamBPlayer1  PlayerSummary  `json:"team_b_player_1"`
	TeamBPlayer2  *PlayerSummary `json:"team_b_player_2,omitempty"`
	Score         string         `json:"score,omitempty"`
	WinnerTeam    string         `json:"winner_team,omitempty"`
	Status        string         `json:"status"` // scheduled, ongoing, completed, cancelled
	StartedAt     *time.Time     `json:"started_at,omitempty"`
	CompletedAt   *time.Time     `json:"completed_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// CreateMatchRequest generates a match inside a session. Player 2 fields are
// empty for singles.
type CreateMatchRequest struct {
	CourtNumber    int    `json:"court_number,omitempty" validate:"omitempty,gt=0"`
	TeamAPlayer1ID string `json:"team_a_player_1_id" validate:"required"`
	TeamAPlayer2ID string `json:"team_a_player_2_id,omitempty"`
	TeamBPlayer1ID string `json:"team_b_player_1_id" validate:"required,nefield=TeamAPlayer1ID"`
	TeamBPlayer2ID string `json:"team_b_player_2_id,omitempty"`
}

// ScoreRequest records a score update for an ongoing match.
type ScoreRequest struct {
	Score      string `json:"score" validate:"required,max=50"`
	WinnerTeam string `json:"winner_team" validate:"required,oneof=A B"`
}

// RatingHistoryPoint is one point in a player's rating trend.
type RatingHistoryPoint struct {
	Date    string  `json:"date"`
	Rating  float64 `json:"rating"`
	Matches int     `json:"matches"`
}

// MatchesPerMonthPoint is one month of play volume.
type MatchesPerMonthPoint struct {
	Month   string `json:"month"`
	Matches int    `json:"matches"`
}

// PlayerStats is a leaderboard/statistics row for one player.
type PlayerStats struct {
	UserID           string                 `json:"user_id"`
	FullName         string                 `json:"full_name"`
	DisplayName      string                 `json:"display_name,omitempty"`
	AvatarURL        string                 `json:"avatar_url,omitempty"`
	TotalMatches     int                    `json:"total_matches"`
	Wins             int                    `json:"wins"`
	Losses           int                    `json:"losses"`
	WinRate          float64                `json:"win_rate"`
	Rating           float64                `json:"rating"`
	MatchesThisMonth int                    `json:"matches_this_month"`
	RatingHistory    []RatingHistoryPoint   `json:"rating_history,omitempty"`
	MatchesPerMonth  []MatchesPerMonthPoint `json:"matches_per_month,omitempty"`
}

// ActivityPoint is one day of club activity.
type ActivityPoint struct {
	Date         string `json:"date"`
	Sessions     int    `json:"sessions"`
	Participants int    `json:"participants"`
	Matches      int    `json:"matches"`
}

// ClubStats is the aggregate statistics view for a club.
type ClubStats struct {
	ClubID         string          `json:"club_id"`
	ClubName       string          `json:"club_name"`
	TotalMembers   int             `json:"total_members"`
	TotalSessions  int             `json:"total_sessions"`
	TotalMatches   int             `json:"total_matches"`
	TopPlayers     []PlayerStats   `json:"top_players"`
	RecentSessions []Session       `json:"recent_sessions"`
	ActivityData   []ActivityPoint `json:"activity_data,omitempty"`
}
