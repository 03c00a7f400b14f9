package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/courtside-hq/courtside/internal/adapter/outbound/rest"
)

var (
	matchSessionID string
	matchCourt     int
	matchTeamA     []string
	matchTeamB     []string
	matchScore     string
	matchWinner    string
	matchAuto      bool
)

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List and manage matches",
}

var matchesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a session's matches",
	RunE:  runMatchesList,
}

var matchesShowCmd = &cobra.Command{
	Use:   "show <match-id>",
	Short: "Show one match",
	Args:  cobra.ExactArgs(1),
	RunE:  runMatchesShow,
}

var matchesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Set up a match inside a session",
	Long: `Create a match with explicit teams, or pass --auto to let the server
build a fair doubles pairing from the session's registered players
(balanced ratings, rotating partners). Auto matchmaking needs at least
4 confirmed players.`,
	RunE: runMatchesCreate,
}

var matchesStartCmd = &cobra.Command{
	Use:   "start <match-id>",
	Short: "Start a scheduled match",
	Args:  cobra.ExactArgs(1),
	RunE:  matchAction((*rest.Client).StartMatch, "Match started."),
}

var matchesScoreCmd = &cobra.Command{
	Use:   "score <match-id>",
	Short: "Record the current score of an ongoing match",
	Args:  cobra.ExactArgs(1),
	RunE:  runMatchesScore,
}

var matchesCompleteCmd = &cobra.Command{
	Use:   "complete <match-id>",
	Short: "Finish a match and declare the winner",
	Args:  cobra.ExactArgs(1),
	RunE:  runMatchesComplete,
}

func init() {
	matchesListCmd.Flags().StringVar(&matchSessionID, "session", "", "session id")
	_ = matchesListCmd.MarkFlagRequired("session")

	matchesCreateCmd.Flags().StringVar(&matchSessionID, "session", "", "session id")
	matchesCreateCmd.Flags().IntVar(&matchCourt, "court", 0, "court number")
	matchesCreateCmd.Flags().StringSliceVar(&matchTeamA, "team-a", nil, "team A player ids (1 for singles, 2 for doubles)")
	matchesCreateCmd.Flags().StringSliceVar(&matchTeamB, "team-b", nil, "team B player ids")
	matchesCreateCmd.Flags().BoolVar(&matchAuto, "auto", false, "let the server pick fair doubles teams")
	_ = matchesCreateCmd.MarkFlagRequired("session")

	matchesScoreCmd.Flags().StringVar(&matchScore, "score", "", `running score, e.g. "21-19 11-8"`)
	matchesScoreCmd.Flags().StringVar(&matchWinner, "leader", "", "team currently ahead (A or B)")
	_ = matchesScoreCmd.MarkFlagRequired("score")
	_ = matchesScoreCmd.MarkFlagRequired("leader")

	matchesCompleteCmd.Flags().StringVar(&matchWinner, "winner", "", "winning team (A or B)")
	_ = matchesCompleteCmd.MarkFlagRequired("winner")

	matchesCmd.AddCommand(matchesListCmd, matchesShowCmd, matchesCreateCmd,
		matchesStartCmd, matchesScoreCmd, matchesCompleteCmd)
	rootCmd.AddCommand(matchesCmd)
}

func matchAction(call func(*rest.Client, context.Context, string) error, done string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(true)
		if err != nil {
			return err
		}
		if err := call(a.client, cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println(done)
		return nil
	}
}

func runMatchesList(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	matches, err := a.client.ListMatches(cmd.Context(), matchSessionID)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		fmt.Println("No matches yet.")
		return nil
	}

	w := newTable()
	fmt.Fprintln(w, "ID\tCOURT\tTEAM A\tTEAM B\tSCORE\tSTATUS")
	for _, m := range matches {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\n",
			m.ID, m.CourtNumber, teamLabel(m.TeamAPlayer1, m.TeamAPlayer2),
			teamLabel(m.TeamBPlayer1, m.TeamBPlayer2), scoreLabel(m), m.Status)
	}
	return w.Flush()
}

func runMatchesShow(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	m, err := a.client.GetMatch(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Court %d: %s vs %s\n", m.CourtNumber,
		teamLabel(m.TeamAPlayer1, m.TeamAPlayer2),
		teamLabel(m.TeamBPlayer1, m.TeamBPlayer2))
	fmt.Printf("  Status: %s\n", m.Status)
	if m.Score != "" {
		fmt.Printf("  Score:  %s\n", m.Score)
	}
	if m.WinnerTeam != "" {
		fmt.Printf("  Winner: team %s\n", m.WinnerTeam)
	}
	if m.StartedAt != nil {
		fmt.Printf("  Started:   %s\n", m.StartedAt.Local().Format("15:04:05"))
	}
	if m.CompletedAt != nil {
		fmt.Printf("  Completed: %s\n", m.CompletedAt.Local().Format("15:04:05"))
	}
	return nil
}

func runMatchesCreate(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	if matchAuto {
		m, err := a.client.AutoCreateMatch(cmd.Context(), matchSessionID)
		if err != nil {
			return err
		}
		fmt.Printf("Matched %s vs %s on court %d (%s)\n",
			teamLabel(m.TeamAPlayer1, m.TeamAPlayer2),
			teamLabel(m.TeamBPlayer1, m.TeamBPlayer2),
			m.CourtNumber, m.ID)
		return nil
	}
	if len(matchTeamA) == 0 || len(matchTeamB) == 0 {
		return fmt.Errorf("pass --team-a and --team-b, or --auto")
	}
	if len(matchTeamA) > 2 || len(matchTeamB) > 2 {
		return fmt.Errorf("a team has at most 2 players")
	}
	if len(matchTeamA) != len(matchTeamB) {
		return fmt.Errorf("both teams need the same number of players")
	}

	req := rest.CreateMatchRequest{CourtNumber: matchCourt}
	req.TeamAPlayer1ID = matchTeamA[0]
	req.TeamBPlayer1ID = matchTeamB[0]
	if len(matchTeamA) == 2 {
		req.TeamAPlayer2ID = matchTeamA[1]
		req.TeamBPlayer2ID = matchTeamB[1]
	}

	m, err := a.client.CreateMatch(cmd.Context(), matchSessionID, req)
	if err != nil {
		return err
	}
	fmt.Printf("Created match %s on court %d\n", m.ID, m.CourtNumber)
	return nil
}

func runMatchesScore(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	err = a.client.UpdateScore(cmd.Context(), args[0], rest.ScoreRequest{
		Score:      matchScore,
		WinnerTeam: strings.ToUpper(matchWinner),
	})
	if err != nil {
		return err
	}
	fmt.Println("Score recorded.")
	return nil
}

func runMatchesComplete(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	if err := a.client.CompleteMatch(cmd.Context(), args[0], strings.ToUpper(matchWinner)); err != nil {
		return err
	}
	fmt.Println("Match completed.")
	return nil
}

func teamLabel(p1 rest.PlayerSummary, p2 *rest.PlayerSummary) string {
	name := summaryName(p1)
	if p2 != nil {
		name += " / " + summaryName(*p2)
	}
	return name
}

func summaryName(p rest.PlayerSummary) string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.FullName
}

func scoreLabel(m rest.Match) string {
	if m.Score == "" {
		return "-"
	}
	return m.Score
}
