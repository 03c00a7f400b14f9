package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/courtside-hq/courtside/internal/adapter/outbound/rest"
)

var (
	clubName        string
	clubSlug        string
	clubDescription string
	clubLocation    string
	clubMaxMembers  int
	clubPublic      bool
)

var clubsCmd = &cobra.Command{
	Use:   "clubs",
	Short: "List and manage clubs",
	RunE:  runClubsList,
}

var clubsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your clubs",
	RunE:  runClubsList,
}

var clubsShowCmd = &cobra.Command{
	Use:   "show <club-id>",
	Short: "Show a club and its members",
	Args:  cobra.ExactArgs(1),
	RunE:  runClubsShow,
}

var clubsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a club",
	RunE:  runClubsCreate,
}

var clubsJoinCmd = &cobra.Command{
	Use:   "join <club-id>",
	Short: "Join a club",
	Args:  cobra.ExactArgs(1),
	RunE:  runClubsJoin,
}

var clubsStatsCmd = &cobra.Command{
	Use:   "stats <club-id>",
	Short: "Show a club's aggregate statistics",
	Args:  cobra.ExactArgs(1),
	RunE:  runClubsStats,
}

var clubsLeaderboardCmd = &cobra.Command{
	Use:   "leaderboard <club-id>",
	Short: "Show a club's player ranking",
	Args:  cobra.ExactArgs(1),
	RunE:  runClubsLeaderboard,
}

func init() {
	clubsCreateCmd.Flags().StringVar(&clubName, "name", "", "club name")
	clubsCreateCmd.Flags().StringVar(&clubSlug, "slug", "", "URL slug (lowercase)")
	clubsCreateCmd.Flags().StringVar(&clubDescription, "description", "", "description")
	clubsCreateCmd.Flags().StringVar(&clubLocation, "location", "", "home location")
	clubsCreateCmd.Flags().IntVar(&clubMaxMembers, "max-members", 0, "member cap (0 = backend default)")
	clubsCreateCmd.Flags().BoolVar(&clubPublic, "public", false, "open to anyone")
	_ = clubsCreateCmd.MarkFlagRequired("name")
	_ = clubsCreateCmd.MarkFlagRequired("slug")

	clubsCmd.AddCommand(clubsListCmd, clubsShowCmd, clubsCreateCmd,
		clubsJoinCmd, clubsStatsCmd, clubsLeaderboardCmd)
	rootCmd.AddCommand(clubsCmd)
}

func runClubsList(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	clubs, err := a.client.ListClubs(cmd.Context())
	if err != nil {
		return err
	}
	if len(clubs) == 0 {
		fmt.Println("No clubs yet. Create one with: courtside clubs create")
		return nil
	}

	w := newTable()
	fmt.Fprintln(w, "ID\tNAME\tLOCATION\tMEMBERS")
	for _, c := range clubs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", c.ID, c.Name, c.Location, c.MemberCount)
	}
	return w.Flush()
}

func runClubsShow(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	club, err := a.client.GetClub(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s)\n", club.Name, club.Slug)
	if club.Description != "" {
		fmt.Printf("  %s\n", club.Description)
	}
	if club.Location != "" {
		fmt.Printf("  Location: %s\n", club.Location)
	}
	fmt.Printf("  Members:  %d / %d\n\n", len(club.Members), club.MaxMembers)

	w := newTable()
	fmt.Fprintln(w, "NAME\tROLE\tRATING\tMATCHES")
	for _, m := range club.Members {
		fmt.Fprintf(w, "%s\t%s\t%.0f\t%d\n",
			memberName(m), m.Role, m.RatingInClub, m.MatchesInClub)
	}
	return w.Flush()
}

func runClubsCreate(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	club, err := a.client.CreateClub(cmd.Context(), rest.CreateClubRequest{
		Name:        clubName,
		Slug:        clubSlug,
		Description: clubDescription,
		Location:    clubLocation,
		MaxMembers:  clubMaxMembers,
		IsPublic:    clubPublic,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Created club %s (%s)\n", club.Name, club.ID)
	return nil
}

func runClubsJoin(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	if err := a.client.JoinClub(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Println("Joined.")
	return nil
}

func runClubsStats(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	stats, err := a.client.GetClubStats(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", stats.ClubName)
	fmt.Printf("  Members:  %d\n", stats.TotalMembers)
	fmt.Printf("  Sessions: %d\n", stats.TotalSessions)
	fmt.Printf("  Matches:  %d\n", stats.TotalMatches)
	if len(stats.TopPlayers) > 0 {
		fmt.Println("\nTop players:")
		w := newTable()
		fmt.Fprintln(w, "  NAME\tRATING\tW-L")
		for _, p := range stats.TopPlayers {
			fmt.Fprintf(w, "  %s\t%.0f\t%d-%d\n", playerName(p), p.Rating, p.Wins, p.Losses)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func runClubsLeaderboard(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	rows, err := a.client.GetLeaderboard(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	w := newTable()
	fmt.Fprintln(w, "#\tNAME\tRATING\tMATCHES\tWIN RATE")
	for i, p := range rows {
		fmt.Fprintf(w, "%d\t%s\t%.0f\t%d\t%.0f%%\n",
			i+1, playerName(p), p.Rating, p.TotalMatches, p.WinRate*100)
	}
	return w.Flush()
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}

func memberName(m rest.ClubMember) string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return m.FullName
}

func playerName(p rest.PlayerStats) string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.FullName
}
