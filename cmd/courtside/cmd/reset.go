package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/courtside-hq/courtside/internal/config"
)

var (
	resetIncludeSnapshots bool
	resetForce            bool
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Remove persisted credentials and cached data",
	Long: `Reset removes the credential file and its token mirror, logging this
machine out. The next command will ask you to run "courtside login" again.

Optional flags:
  --include-snapshots   Also remove the offline snapshot database
  --force               Skip confirmation prompt`,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVar(&resetIncludeSnapshots, "include-snapshots", false, "Also remove the offline snapshot database")
	resetCmd.Flags().BoolVar(&resetForce, "force", false, "Skip confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigRaw()
	if err != nil {
		return err
	}
	if statePath != "" {
		cfg.StatePath = statePath
	}

	type target struct {
		path string
		desc string
	}
	targets := []target{
		{cfg.StatePath, "credential file"},
		{cfg.StatePath + ".token", "token mirror"},
		{cfg.StatePath + ".bak", "credential backup"},
		{cfg.StatePath + ".lock", "lock file"},
	}
	if resetIncludeSnapshots && cfg.Cache.SnapshotPath != "" {
		targets = append(targets, target{cfg.Cache.SnapshotPath, "snapshot database"})
	}

	var existing []target
	for _, t := range targets {
		if _, err := os.Stat(t.path); err == nil {
			existing = append(existing, t)
		}
	}
	if len(existing) == 0 {
		fmt.Fprintln(os.Stderr, "Nothing to reset — no state files found.")
		return nil
	}

	fmt.Fprintln(os.Stderr, "The following will be removed:")
	for _, t := range existing {
		fmt.Fprintf(os.Stderr, "  - %s (%s)\n", t.path, t.desc)
	}

	if !resetForce {
		fmt.Fprint(os.Stderr, "\nProceed? [y/N] ")
		var answer string
		fmt.Scanln(&answer) //nolint:errcheck // interactive prompt, error irrelevant
		if answer != "y" && answer != "Y" {
			fmt.Fprintln(os.Stderr, "Aborted.")
			return nil
		}
	}

	var errors int
	for _, t := range existing {
		if err := os.Remove(t.path); err != nil {
			fmt.Fprintf(os.Stderr, "  ERROR removing %s: %v\n", t.path, err)
			errors++
		} else {
			fmt.Fprintf(os.Stderr, "  Removed %s\n", t.path)
		}
	}
	if errors > 0 {
		return fmt.Errorf("%d file(s) could not be removed", errors)
	}

	fmt.Fprintln(os.Stderr, "\nReset complete.")
	return nil
}
