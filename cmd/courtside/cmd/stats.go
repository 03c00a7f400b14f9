package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsUserID string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show a player's match statistics",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsUserID, "user", "", "player id (default: yourself)")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}

	userID := statsUserID
	if userID == "" {
		me, err := a.client.Me(cmd.Context())
		if err != nil {
			return err
		}
		userID = me.ID
	}

	stats, err := a.client.GetUserStats(cmd.Context(), userID)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", playerName(*stats))
	fmt.Printf("  Rating:     %.0f\n", stats.Rating)
	fmt.Printf("  Record:     %d-%d (%.0f%% over %d matches)\n",
		stats.Wins, stats.Losses, stats.WinRate*100, stats.TotalMatches)
	fmt.Printf("  This month: %d matches\n", stats.MatchesThisMonth)

	if len(stats.RatingHistory) > 0 {
		fmt.Println("\nRating trend:")
		w := newTable()
		fmt.Fprintln(w, "  DATE\tRATING\tMATCHES")
		for _, p := range stats.RatingHistory {
			fmt.Fprintf(w, "  %s\t%.0f\t%d\n", p.Date, p.Rating, p.Matches)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	if len(stats.MatchesPerMonth) > 0 {
		fmt.Println("\nPlay volume:")
		w := newTable()
		fmt.Fprintln(w, "  MONTH\tMATCHES")
		for _, p := range stats.MatchesPerMonth {
			fmt.Fprintf(w, "  %s\t%d\n", p.Month, p.Matches)
		}
		return w.Flush()
	}
	return nil
}
