package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutPurge bool

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and clear stored credentials",
	RunE:  runLogout,
}

func init() {
	logoutCmd.Flags().BoolVar(&logoutPurge, "purge", false, "also remove the credential file and its backups")
	rootCmd.AddCommand(logoutCmd)
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}

	// Logout fires the persistence hook, which clears the file and mirror.
	a.creds.Logout()

	if logoutPurge {
		if err := a.store.Reset(); err != nil {
			return fmt.Errorf("purge credential files: %w", err)
		}
	}

	fmt.Println("Logged out.")
	return nil
}
