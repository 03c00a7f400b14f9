package cmd

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/courtside-hq/courtside/internal/adapter/outbound/querycache"
	"github.com/courtside-hq/courtside/internal/adapter/outbound/realtime"
	"github.com/courtside-hq/courtside/internal/adapter/outbound/rest"
	"github.com/courtside-hq/courtside/internal/adapter/outbound/sqlite"
	"github.com/courtside-hq/courtside/internal/eventfilter"
	"github.com/courtside-hq/courtside/internal/metrics"
	"github.com/courtside-hq/courtside/internal/service"
)

var (
	watchFilterExpr  string
	watchMetricsAddr string
)

var watchCmd = &cobra.Command{
	Use:   "watch <session-id>",
	Short: "Follow a session live over the realtime channel",
	Long: `Watch subscribes to the backend's push channel and redraws the
session's scoreboard whenever a registration, match, or score changes.
Polling continues underneath as a safety net, so a dropped websocket
degrades the view instead of freezing it.

An optional CEL expression narrows which events are announced, for
example:

  courtside watch sess-42 --filter 'event == "score_updated"'

The variables event, session_id and match_id are available. Filters
shape the announcements only; cache invalidation always processes every
event.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchFilterExpr, "filter", "", "CEL expression over event, session_id, match_id")
	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "expose Prometheus metrics on this address (e.g. :9090)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	sessionID := args[0]

	var filter *eventfilter.Filter
	if watchFilterExpr != "" {
		filter, err = eventfilter.New(watchFilterExpr)
		if err != nil {
			return fmt.Errorf("invalid --filter: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	if watchMetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: watchMetricsAddr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				a.logger.Warn("metrics server failed", "addr", watchMetricsAddr, "error", err)
			}
		}()
		defer srv.Close()
		a.logger.Info("metrics exposed", "addr", watchMetricsAddr)
	}

	// Rebuild the client with the watch registry attached so request and
	// refresh counters land next to the event counters.
	a.client = rest.NewClient(a.cfg.APIBaseURL, a.creds,
		rest.WithTimeout(a.cfg.RequestTimeout()),
		rest.WithLogger(a.logger),
		rest.WithMetrics(m),
	)

	cache := querycache.New(
		querycache.WithTTL(a.cfg.Cache.TTLDuration()),
		querycache.WithMaxEntries(a.cfg.Cache.MaxEntries),
		querycache.WithLogger(a.logger),
	)
	syncService := service.NewSyncService(cache,
		service.WithSyncLogger(a.logger),
		service.WithSyncMetrics(m),
	)

	opts := []service.WatchOption{
		service.WithWatchLogger(a.logger),
		service.WithPollInterval(a.cfg.Live.PollIntervalDuration()),
		service.WithEventFilter(filter),
		service.WithListenerFactory(func(handler realtime.Handler) service.Lifecycle {
			return realtime.NewListener(a.cfg.WSURL, a.creds.AccessToken, handler,
				realtime.WithListenerLogger(a.logger),
				realtime.WithListenerMetrics(m),
				realtime.WithReconnectPolicy(
					a.cfg.Realtime.InitialIntervalDuration(),
					a.cfg.Realtime.MaxIntervalDuration(),
					a.cfg.Realtime.MaxAttempts,
				),
			)
		}),
	}

	if a.cfg.Cache.SnapshotPath != "" {
		snapshots, err := sqlite.Open(a.cfg.Cache.SnapshotPath, a.logger)
		if err != nil {
			return fmt.Errorf("open snapshot store: %w", err)
		}
		defer snapshots.Close()
		opts = append(opts, service.WithSnapshots(snapshots))
	}

	watcher := service.NewWatchService(a.client, cache, syncService, opts...)
	watcher.Render = renderScoreboard
	watcher.OnEvent = func(ev realtime.Event) {
		fmt.Printf("* %s", ev.Event)
		if ev.MatchID != "" {
			fmt.Printf(" (match %s)", ev.MatchID)
		}
		fmt.Println()
	}

	fmt.Printf("Watching session %s. Ctrl-C to stop.\n\n", sessionID)
	return watcher.Run(ctx, sessionID)
}
