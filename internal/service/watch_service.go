package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/courtside-hq/courtside/internal/adapter/outbound/querycache"
	"github.com/courtside-hq/courtside/internal/adapter/outbound/realtime"
	"github.com/courtside-hq/courtside/internal/adapter/outbound/rest"
	"github.com/courtside-hq/courtside/internal/eventfilter"
)

// DefaultPollInterval matches the refresh rate of the courtside web
// live views.
const DefaultPollInterval = 5 * time.Second

// MatchLister fetches the matches of a session. Satisfied by
// *rest.Client.
type MatchLister interface {
	ListMatches(ctx context.Context, sessionID string) ([]rest.Match, error)
}

// Lifecycle is a start/stoppable background component, satisfied by
// *realtime.Listener.
type Lifecycle interface {
	Start(ctx context.Context)
	Stop()
}

// ListenerFactory builds the realtime listener around the watch
// service's own event handler. A nil factory degrades to polling only.
type ListenerFactory func(realtime.Handler) Lifecycle

// SnapshotStore persists the last rendered payload per cache key.
// Satisfied by *sqlite.SnapshotStore.
type SnapshotStore interface {
	Get(ctx context.Context, key string) ([]byte, time.Time, error)
	Put(ctx context.Context, key string, payload []byte) error
}

// WatchService drives a long-lived live view of one session. Push events
// invalidate the cache and trigger an immediate refetch; a poll ticker
// covers outages of the push channel. Rendered snapshots go to the
// Render callback on the watch goroutine, never from the listener's.
type WatchService struct {
	client      MatchLister
	cache       *querycache.Cache
	sync        *SyncService
	newListener ListenerFactory
	filter      *eventfilter.Filter
	snapshots   SnapshotStore
	interval    time.Duration
	logger      *slog.Logger

	// Render receives each fresh snapshot of the session's matches.
	Render func(matches []rest.Match)
	// OnEvent, if set, receives events that pass the filter.
	OnEvent func(ev realtime.Event)
}

// WatchOption configures a WatchService.
type WatchOption func(*WatchService)

// WithWatchLogger sets the logger.
func WithWatchLogger(logger *slog.Logger) WatchOption {
	return func(w *WatchService) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithPollInterval overrides the fallback poll interval.
func WithPollInterval(d time.Duration) WatchOption {
	return func(w *WatchService) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithEventFilter restricts which events reach the OnEvent callback.
// Cache invalidation is unaffected; filters shape the output, not the
// sync.
func WithEventFilter(f *eventfilter.Filter) WatchOption {
	return func(w *WatchService) {
		w.filter = f
	}
}

// WithListenerFactory wires the realtime channel in.
func WithListenerFactory(factory ListenerFactory) WatchOption {
	return func(w *WatchService) {
		w.newListener = factory
	}
}

// WithSnapshots enables the persistent snapshot tier: the last good
// payload renders immediately on startup and every refresh overwrites
// it.
func WithSnapshots(s SnapshotStore) WatchOption {
	return func(w *WatchService) {
		w.snapshots = s
	}
}

// NewWatchService creates a WatchService over the given client, cache
// and sync service.
func NewWatchService(client MatchLister, cache *querycache.Cache, sync *SyncService, opts ...WatchOption) *WatchService {
	w := &WatchService{
		client:   client,
		cache:    cache,
		sync:     sync,
		interval: DefaultPollInterval,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches sessionID until ctx is cancelled. The first snapshot is
// rendered before Run starts waiting; a fetch failure there is returned,
// later failures are logged and retried on the next tick.
func (w *WatchService) Run(ctx context.Context, sessionID string) error {
	events := make(chan realtime.Event, 16)

	var listener Lifecycle
	if w.newListener != nil {
		listener = w.newListener(func(ev realtime.Event) {
			select {
			case events <- ev:
			default:
				// A full buffer means a refetch is already pending;
				// dropping the event loses nothing.
			}
		})
		listener.Start(ctx)
		defer listener.Stop()
	}

	w.renderSnapshot(ctx, sessionID)

	if err := w.refresh(ctx, sessionID); err != nil {
		return err
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-ticker.C:
			w.cache.Invalidate(querycache.KeyMatches(sessionID))
			if err := w.refresh(ctx, sessionID); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.logger.Warn("poll refresh failed", "session_id", sessionID, "error", err)
			}

		case ev := <-events:
			w.sync.HandleEvent(ev)
			if ev.SessionID != sessionID {
				continue
			}
			if w.OnEvent != nil && w.filter.Match(ev) {
				w.OnEvent(ev)
			}
			if err := w.refresh(ctx, sessionID); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.logger.Warn("event refresh failed",
					"session_id", sessionID, "event", ev.Event, "error", err)
			}
			ticker.Reset(w.interval)
		}
	}
}

// refresh fetches the session's matches through the cache and renders
// them. Snapshots are dropped once ctx is cancelled so a slow fetch
// cannot render after shutdown.
func (w *WatchService) refresh(ctx context.Context, sessionID string) error {
	matches, err := querycache.Fetch[[]rest.Match](ctx, w.cache,
		querycache.KeyMatches(sessionID),
		func(ctx context.Context) ([]rest.Match, error) {
			return w.client.ListMatches(ctx, sessionID)
		})
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return nil
	}
	if w.Render != nil {
		w.Render(matches)
	}
	w.persistSnapshot(ctx, sessionID, matches)
	return nil
}

// renderSnapshot shows the persisted payload, if any, before the first
// network fetch. Best effort: a missing or unreadable snapshot is
// silent.
func (w *WatchService) renderSnapshot(ctx context.Context, sessionID string) {
	if w.snapshots == nil || w.Render == nil {
		return
	}
	payload, _, err := w.snapshots.Get(ctx, querycache.KeyMatches(sessionID))
	if err != nil {
		return
	}
	var matches []rest.Match
	if err := json.Unmarshal(payload, &matches); err != nil {
		w.logger.Debug("snapshot unreadable, skipping", "session_id", sessionID, "error", err)
		return
	}
	w.Render(matches)
}

func (w *WatchService) persistSnapshot(ctx context.Context, sessionID string, matches []rest.Match) {
	if w.snapshots == nil {
		return
	}
	payload, err := json.Marshal(matches)
	if err != nil {
		return
	}
	if err := w.snapshots.Put(ctx, querycache.KeyMatches(sessionID), payload); err != nil {
		w.logger.Debug("snapshot write failed", "session_id", sessionID, "error", err)
	}
}
