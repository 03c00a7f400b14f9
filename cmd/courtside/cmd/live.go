package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/courtside-hq/courtside/internal/adapter/outbound/querycache"
	"github.com/courtside-hq/courtside/internal/adapter/outbound/rest"
	"github.com/courtside-hq/courtside/internal/service"
)

var liveCmd = &cobra.Command{
	Use:   "live <session-id>",
	Short: "Poll a session's matches and redraw on every change",
	Long: `Live renders a session's scoreboard and refreshes it on a fixed
interval. It uses plain polling and works without the realtime channel;
use "courtside watch" when the backend's push channel is available.`,
	Args: cobra.ExactArgs(1),
	RunE: runLive,
}

func init() {
	rootCmd.AddCommand(liveCmd)
}

func runLive(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cache := querycache.New(
		querycache.WithTTL(a.cfg.Cache.TTLDuration()),
		querycache.WithMaxEntries(a.cfg.Cache.MaxEntries),
		querycache.WithLogger(a.logger),
	)
	syncService := service.NewSyncService(cache, service.WithSyncLogger(a.logger))

	watcher := service.NewWatchService(a.client, cache, syncService,
		service.WithWatchLogger(a.logger),
		service.WithPollInterval(a.cfg.Live.PollIntervalDuration()),
	)
	watcher.Render = renderScoreboard

	fmt.Printf("Polling session %s every %s. Ctrl-C to stop.\n\n",
		args[0], a.cfg.Live.PollIntervalDuration())
	return watcher.Run(ctx, args[0])
}

// renderScoreboard prints one snapshot of the session's matches.
func renderScoreboard(matches []rest.Match) {
	fmt.Printf("--- %s ---\n", time.Now().Format("15:04:05"))
	if len(matches) == 0 {
		fmt.Println("No matches.")
		return
	}
	w := newTable()
	fmt.Fprintln(w, "COURT\tTEAM A\tTEAM B\tSCORE\tSTATUS")
	for _, m := range matches {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			m.CourtNumber, teamLabel(m.TeamAPlayer1, m.TeamAPlayer2),
			teamLabel(m.TeamBPlayer1, m.TeamBPlayer2), scoreLabel(m), m.Status)
	}
	_ = w.Flush()
	fmt.Println()
}
