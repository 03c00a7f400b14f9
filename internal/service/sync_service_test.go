package service

import (
	"testing"

	"github.com/courtside-hq/courtside/internal/adapter/outbound/realtime"
)

type recordingCache struct {
	keys     []string
	prefixes []string
}

func (r *recordingCache) Invalidate(key string)          { r.keys = append(r.keys, key) }
func (r *recordingCache) InvalidatePrefix(prefix string) { r.prefixes = append(r.prefixes, prefix) }

func (r *recordingCache) total() int { return len(r.keys) + len(r.prefixes) }

func TestSyncService_RegistrationUpdated(t *testing.T) {
	cache := &recordingCache{}
	s := NewSyncService(cache)

	s.HandleEvent(realtime.Event{Event: "registration_updated", SessionID: "s-1"})

	if len(cache.prefixes) != 1 || cache.prefixes[0] != "session:s-1" {
		t.Errorf("prefixes = %v, want [session:s-1]", cache.prefixes)
	}
	if len(cache.keys) != 0 {
		t.Errorf("keys = %v, want none", cache.keys)
	}
}

func TestSyncService_MatchStarted(t *testing.T) {
	cache := &recordingCache{}
	s := NewSyncService(cache)

	s.HandleEvent(realtime.Event{Event: "match_started", SessionID: "s-2"})

	if len(cache.prefixes) != 1 || cache.prefixes[0] != "matches:s-2" {
		t.Errorf("prefixes = %v, want [matches:s-2]", cache.prefixes)
	}
	if len(cache.keys) != 0 {
		t.Errorf("keys = %v, want none", cache.keys)
	}
}

func TestSyncService_ScoreUpdated(t *testing.T) {
	cache := &recordingCache{}
	s := NewSyncService(cache)

	s.HandleEvent(realtime.Event{Event: "score_updated", MatchID: "m-1", SessionID: "s-1"})

	if len(cache.keys) != 1 || cache.keys[0] != "match:m-1" {
		t.Errorf("keys = %v, want [match:m-1]", cache.keys)
	}
	// The session's match list carries the score too; it must go stale so
	// an event-driven refetch of the list sees the new score.
	if len(cache.prefixes) != 1 || cache.prefixes[0] != "matches:s-1" {
		t.Errorf("prefixes = %v, want [matches:s-1]", cache.prefixes)
	}
	// Other session views survive a score tick.
	for _, p := range cache.prefixes {
		if p == "session:s-1" {
			t.Errorf("session detail invalidated on a score tick: %v", cache.prefixes)
		}
	}
}

func TestSyncService_ScoreUpdatedWithoutSession(t *testing.T) {
	cache := &recordingCache{}
	s := NewSyncService(cache)

	s.HandleEvent(realtime.Event{Event: "score_updated", MatchID: "m-1"})

	if len(cache.keys) != 1 || cache.keys[0] != "match:m-1" {
		t.Errorf("keys = %v, want [match:m-1]", cache.keys)
	}
	if len(cache.prefixes) != 0 {
		t.Errorf("prefixes = %v, want none without a session id", cache.prefixes)
	}
}

func TestSyncService_UnknownEventIgnored(t *testing.T) {
	cache := &recordingCache{}
	s := NewSyncService(cache)

	s.HandleEvent(realtime.Event{Event: "club_renamed", SessionID: "s-1"})

	if cache.total() != 0 {
		t.Errorf("unknown event invalidated %d entries, want 0", cache.total())
	}
}

func TestSyncService_MissingIDsIgnored(t *testing.T) {
	cache := &recordingCache{}
	s := NewSyncService(cache)

	s.HandleEvent(realtime.Event{Event: "registration_updated"})
	s.HandleEvent(realtime.Event{Event: "match_started"})
	s.HandleEvent(realtime.Event{Event: "score_updated"})

	if cache.total() != 0 {
		t.Errorf("events without ids invalidated %d entries, want 0", cache.total())
	}
}
