package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/courtside-hq/courtside/internal/adapter/outbound/rest"
)

var (
	sessionClubID          string
	sessionTitle           string
	sessionDescription     string
	sessionLocation        string
	sessionStart           string
	sessionEnd             string
	sessionMaxParticipants int
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List and manage play sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a club's sessions",
	RunE:  runSessionsList,
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show a session and its registrations",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsShow,
}

var sessionsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Schedule a session",
	RunE:  runSessionsCreate,
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Cancel a scheduled session (organizer only)",
	Args:  cobra.ExactArgs(1),
	RunE:  sessionAction((*rest.Client).DeleteSession, "Session cancelled."),
}

var sessionsOpenCmd = &cobra.Command{
	Use:   "open <session-id>",
	Short: "Open a session for registration",
	Args:  cobra.ExactArgs(1),
	RunE:  sessionAction((*rest.Client).OpenRegistration, "Registration is open."),
}

var sessionsRegisterCmd = &cobra.Command{
	Use:   "register <session-id>",
	Short: "Register for a session (waitlisted when full)",
	Args:  cobra.ExactArgs(1),
	RunE:  sessionAction((*rest.Client).RegisterForSession, "Registered."),
}

var sessionsCancelCmd = &cobra.Command{
	Use:   "cancel <session-id>",
	Short: "Cancel your registration",
	Args:  cobra.ExactArgs(1),
	RunE:  sessionAction((*rest.Client).CancelRegistration, "Registration cancelled."),
}

var sessionsCheckinCmd = &cobra.Command{
	Use:   "checkin <session-id>",
	Short: "Check in at the venue",
	Args:  cobra.ExactArgs(1),
	RunE:  sessionAction((*rest.Client).CheckIn, "Checked in."),
}

var sessionsCheckoutCmd = &cobra.Command{
	Use:   "checkout <session-id>",
	Short: "Check out of the venue",
	Args:  cobra.ExactArgs(1),
	RunE:  sessionAction((*rest.Client).CheckOut, "Checked out."),
}

func init() {
	sessionsListCmd.Flags().StringVar(&sessionClubID, "club", "", "club id")
	_ = sessionsListCmd.MarkFlagRequired("club")

	sessionsCreateCmd.Flags().StringVar(&sessionClubID, "club", "", "club id")
	sessionsCreateCmd.Flags().StringVar(&sessionTitle, "title", "", "session title")
	sessionsCreateCmd.Flags().StringVar(&sessionDescription, "description", "", "description")
	sessionsCreateCmd.Flags().StringVar(&sessionLocation, "location", "", "venue")
	sessionsCreateCmd.Flags().StringVar(&sessionStart, "start", "", "start time (RFC 3339, e.g. 2026-09-05T19:00:00+08:00)")
	sessionsCreateCmd.Flags().StringVar(&sessionEnd, "end", "", "end time (RFC 3339)")
	sessionsCreateCmd.Flags().IntVar(&sessionMaxParticipants, "max", 0, "participant cap")
	for _, f := range []string{"club", "title", "location", "start", "end", "max"} {
		_ = sessionsCreateCmd.MarkFlagRequired(f)
	}

	sessionsCmd.AddCommand(sessionsListCmd, sessionsShowCmd, sessionsCreateCmd,
		sessionsDeleteCmd, sessionsOpenCmd, sessionsRegisterCmd, sessionsCancelCmd,
		sessionsCheckinCmd, sessionsCheckoutCmd)
	rootCmd.AddCommand(sessionsCmd)
}

// sessionAction wraps the one-id client calls that differ only in verb.
func sessionAction(call func(*rest.Client, context.Context, string) error, done string) func(*cobra.Command, []string) error {
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

func runSessionsList(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	sessions, err := a.client.ListSessions(cmd.Context(), sessionClubID)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions scheduled.")
		return nil
	}

	w := newTable()
	fmt.Fprintln(w, "ID\tTITLE\tSTART\tSTATUS\tCONFIRMED\tWAITLIST")
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d/%d\t%d\n",
			s.ID, s.Title, s.StartTime.Local().Format("Mon 2 Jan 15:04"),
			s.Status, s.ConfirmedCount, s.MaxParticipants, s.WaitlistCount)
	}
	return w.Flush()
}

func runSessionsShow(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	detail, err := a.client.GetSession(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s [%s]\n", detail.Title, detail.Status)
	fmt.Printf("  %s - %s at %s\n",
		detail.StartTime.Local().Format("Mon 2 Jan 15:04"),
		detail.EndTime.Local().Format("15:04"),
		detail.Location)
	fmt.Printf("  Confirmed %d/%d, waitlist %d\n\n",
		detail.ConfirmedCount, detail.MaxParticipants, detail.WaitlistCount)

	if len(detail.Registrations) == 0 {
		fmt.Println("No registrations yet.")
		return nil
	}
	w := newTable()
	fmt.Fprintln(w, "NAME\tSTATUS\tCHECKED IN")
	for _, r := range detail.Registrations {
		status := r.Status
		if r.Status == "waitlisted" && r.WaitlistPosition > 0 {
			status = fmt.Sprintf("waitlisted #%d", r.WaitlistPosition)
		}
		checkedIn := "-"
		if r.CheckedInAt != nil {
			checkedIn = r.CheckedInAt.Local().Format("15:04")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", registrationName(r), status, checkedIn)
	}
	return w.Flush()
}

func runSessionsCreate(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}

	start, err := time.Parse(time.RFC3339, sessionStart)
	if err != nil {
		return fmt.Errorf("parse --start: %w", err)
	}
	end, err := time.Parse(time.RFC3339, sessionEnd)
	if err != nil {
		return fmt.Errorf("parse --end: %w", err)
	}

	session, err := a.client.CreateSession(cmd.Context(), sessionClubID, rest.CreateSessionRequest{
		Title:           sessionTitle,
		Description:     sessionDescription,
		Location:        sessionLocation,
		StartTime:       start,
		EndTime:         end,
		MaxParticipants: sessionMaxParticipants,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Created session %s (%s)\n", session.Title, session.ID)
	return nil
}

func registrationName(r rest.Registration) string {
	if r.DisplayName != "" {
		return r.DisplayName
	}
	return r.FullName
}
