package service

import (
	"log/slog"

	"github.com/courtside-hq/courtside/internal/adapter/outbound/querycache"
	"github.com/courtside-hq/courtside/internal/adapter/outbound/realtime"
	"github.com/courtside-hq/courtside/internal/metrics"
)

// Backend push event names.
const (
	EventRegistrationUpdated = "registration_updated"
	EventMatchStarted        = "match_started"
	EventScoreUpdated        = "score_updated"
)

// Invalidator is the slice of the query cache the sync service needs.
type Invalidator interface {
	Invalidate(key string)
	InvalidatePrefix(prefix string)
}

// SyncService translates push events into cache invalidations. Each event
// touches only the keys for the resources it names; everything else stays
// cached. Unknown events are ignored so a newer backend never breaks an
// older client.
type SyncService struct {
	cache   Invalidator
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// SyncOption configures a SyncService.
type SyncOption func(*SyncService)

// WithSyncLogger sets the logger.
func WithSyncLogger(logger *slog.Logger) SyncOption {
	return func(s *SyncService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSyncMetrics attaches metrics.
func WithSyncMetrics(m *metrics.Metrics) SyncOption {
	return func(s *SyncService) {
		s.metrics = m
	}
}

// NewSyncService creates a SyncService over the given cache.
func NewSyncService(cache Invalidator, opts ...SyncOption) *SyncService {
	s := &SyncService{
		cache:  cache,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HandleEvent applies one push event to the cache. Safe to use as a
// realtime.Handler.
func (s *SyncService) HandleEvent(ev realtime.Event) {
	switch ev.Event {
	case EventRegistrationUpdated:
		if ev.SessionID == "" {
			s.logger.Debug("registration event without session id, ignored")
			return
		}
		s.invalidatePrefix(querycache.KeySession(ev.SessionID))

	case EventMatchStarted:
		if ev.SessionID == "" {
			s.logger.Debug("match start event without session id, ignored")
			return
		}
		s.invalidatePrefix(querycache.KeyMatches(ev.SessionID))

	case EventScoreUpdated:
		if ev.MatchID == "" {
			s.logger.Debug("score event without match id, ignored")
			return
		}
		s.invalidate(querycache.KeyMatch(ev.MatchID))
		// The score also appears in the session's match list; stale it so
		// an event-driven refetch renders the new score, not the cached list.
		if ev.SessionID != "" {
			s.invalidatePrefix(querycache.KeyMatches(ev.SessionID))
		}

	default:
		s.logger.Debug("unhandled push event", "event", ev.Event)
	}
}

func (s *SyncService) invalidate(key string) {
	s.cache.Invalidate(key)
	s.metrics.IncInvalidation("event")
	s.logger.Debug("cache invalidated", "key", key)
}

func (s *SyncService) invalidatePrefix(prefix string) {
	s.cache.InvalidatePrefix(prefix)
	s.metrics.IncInvalidation("event")
	s.logger.Debug("cache invalidated", "prefix", prefix)
}
