package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/courtside-hq/courtside/internal/adapter/outbound/querycache"
	"github.com/courtside-hq/courtside/internal/adapter/outbound/realtime"
	"github.com/courtside-hq/courtside/internal/adapter/outbound/rest"
	"github.com/courtside-hq/courtside/internal/eventfilter"
)

type fakeLister struct {
	mu      sync.Mutex
	calls   int
	matches []rest.Match
	block   chan struct{} // if set, ListMatches waits here first
}

func (f *fakeLister) ListMatches(ctx context.Context, sessionID string) ([]rest.Match, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.matches, nil
}

func (f *fakeLister) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeListener hands the watch service's handler back to the test so it
// can inject events.
type fakeListener struct {
	handler realtime.Handler
	started atomic.Bool
}

func (f *fakeListener) Start(ctx context.Context) { f.started.Store(true) }
func (f *fakeListener) Stop()                     {}

func newWatchFixture(t *testing.T, opts ...WatchOption) (*WatchService, *fakeLister, *fakeListener, chan []rest.Match) {
	t.Helper()
	lister := &fakeLister{matches: []rest.Match{{ID: "m-1", Status: "ongoing"}}}
	listener := &fakeListener{}
	// TTL 0 so the expirable LRU starts no janitor goroutine; these tests
	// rely on explicit invalidation, not expiry, and goleak would flag it.
	cache := querycache.New(querycache.WithTTL(0))
	syncService := NewSyncService(cache)

	opts = append([]WatchOption{
		WithPollInterval(time.Hour), // tests drive refreshes themselves
		WithListenerFactory(func(h realtime.Handler) Lifecycle {
			listener.handler = h
			return listener
		}),
	}, opts...)

	w := NewWatchService(lister, cache, syncService, opts...)
	renders := make(chan []rest.Match, 16)
	w.Render = func(matches []rest.Match) { renders <- matches }
	return w, lister, listener, renders
}

func waitRender(t *testing.T, renders <-chan []rest.Match) []rest.Match {
	t.Helper()
	select {
	case m := <-renders:
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for render")
		return nil
	}
}

func runWatch(t *testing.T, w *WatchService, sessionID string) (cancel func()) {
	t.Helper()
	ctx, cancelCtx := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := w.Run(ctx, sessionID); err != nil {
			t.Errorf("Run: %v", err)
		}
	}()
	return func() {
		cancelCtx()
		<-done
	}
}

func TestWatchService_RendersInitialSnapshot(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, lister, listener, renders := newWatchFixture(t)
	stop := runWatch(t, w, "s-1")
	defer stop()

	matches := waitRender(t, renders)
	if len(matches) != 1 || matches[0].ID != "m-1" {
		t.Errorf("initial snapshot = %+v", matches)
	}
	if lister.callCount() != 1 {
		t.Errorf("lister called %d times, want 1", lister.callCount())
	}
	if !listener.started.Load() {
		t.Error("listener was not started")
	}
}

func TestWatchService_EventInvalidatesAndRefetches(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, lister, listener, renders := newWatchFixture(t)
	stop := runWatch(t, w, "s-1")
	defer stop()

	waitRender(t, renders) // initial

	lister.mu.Lock()
	lister.matches = []rest.Match{{ID: "m-1", Status: "ongoing"}, {ID: "m-2", Status: "ongoing"}}
	lister.mu.Unlock()

	listener.handler(realtime.Event{Event: "match_started", SessionID: "s-1"})

	matches := waitRender(t, renders)
	if len(matches) != 2 {
		t.Errorf("snapshot after event = %d matches, want 2 (cache should have been invalidated)", len(matches))
	}
	if lister.callCount() != 2 {
		t.Errorf("lister called %d times, want 2", lister.callCount())
	}
}

func TestWatchService_ScoreEventRendersFreshScore(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, lister, listener, renders := newWatchFixture(t)
	stop := runWatch(t, w, "s-1")
	defer stop()

	waitRender(t, renders) // initial

	lister.mu.Lock()
	lister.matches = []rest.Match{{ID: "m-1", Status: "ongoing", Score: "21-19"}}
	lister.mu.Unlock()

	listener.handler(realtime.Event{Event: "score_updated", SessionID: "s-1", MatchID: "m-1"})

	// The match list entry is well within its TTL; only the score event's
	// invalidation can force the refetch that shows the new score.
	matches := waitRender(t, renders)
	if len(matches) != 1 || matches[0].Score != "21-19" {
		t.Errorf("render after score event = %+v, want the updated score", matches)
	}
	if lister.callCount() != 2 {
		t.Errorf("lister called %d times, want 2", lister.callCount())
	}
}

func TestWatchService_OtherSessionEventDoesNotRender(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, lister, listener, renders := newWatchFixture(t)
	stop := runWatch(t, w, "s-1")
	defer stop()

	waitRender(t, renders)
	listener.handler(realtime.Event{Event: "match_started", SessionID: "s-other"})

	select {
	case m := <-renders:
		t.Errorf("unexpected render for foreign session: %+v", m)
	case <-time.After(150 * time.Millisecond):
	}
	if lister.callCount() != 1 {
		t.Errorf("lister called %d times, want 1", lister.callCount())
	}
}

func TestWatchService_FilterGatesOnEventCallback(t *testing.T) {
	defer goleak.VerifyNone(t)

	filter, err := eventfilter.New(`event == "score_updated"`)
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	w, _, listener, renders := newWatchFixture(t, WithEventFilter(filter))

	var surfaced []string
	var mu sync.Mutex
	w.OnEvent = func(ev realtime.Event) {
		mu.Lock()
		surfaced = append(surfaced, ev.Event)
		mu.Unlock()
	}

	stop := runWatch(t, w, "s-1")
	defer stop()
	waitRender(t, renders)

	listener.handler(realtime.Event{Event: "match_started", SessionID: "s-1"})
	waitRender(t, renders)
	listener.handler(realtime.Event{Event: "score_updated", SessionID: "s-1", MatchID: "m-1"})
	waitRender(t, renders)

	mu.Lock()
	defer mu.Unlock()
	if len(surfaced) != 1 || surfaced[0] != "score_updated" {
		t.Errorf("surfaced events = %v, want [score_updated]", surfaced)
	}
}

func TestWatchService_PollTickerRefetches(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, lister, _, renders := newWatchFixture(t, WithPollInterval(20*time.Millisecond))
	stop := runWatch(t, w, "s-1")
	defer stop()

	waitRender(t, renders)
	waitRender(t, renders) // second render can only come from the poll tick

	if lister.callCount() < 2 {
		t.Errorf("lister called %d times, want at least 2", lister.callCount())
	}
}

func TestWatchService_NoRenderAfterCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	lister := &fakeLister{block: make(chan struct{}), matches: []rest.Match{{ID: "m-1"}}}
	cache := querycache.New(querycache.WithTTL(0))
	w := NewWatchService(lister, cache, NewSyncService(cache), WithPollInterval(time.Hour))

	var renders atomic.Int32
	w.Render = func([]rest.Match) { renders.Add(1) }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx, "s-1")
	}()

	// Cancel while the initial fetch is still in flight, then let it finish.
	cancel()
	close(lister.block)
	<-done

	if got := renders.Load(); got != 0 {
		t.Errorf("%d renders after cancel, want 0", got)
	}
}

type memSnapshots struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memSnapshots) Get(ctx context.Context, key string) ([]byte, time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.data[key]
	if !ok {
		return nil, time.Time{}, errors.New("not found")
	}
	return p, time.Now(), nil
}

func (m *memSnapshots) Put(ctx context.Context, key string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = map[string][]byte{}
	}
	m.data[key] = payload
	return nil
}

func TestWatchService_SnapshotRendersBeforeFirstFetch(t *testing.T) {
	defer goleak.VerifyNone(t)

	snaps := &memSnapshots{data: map[string][]byte{
		"matches:s-1": []byte(`[{"id":"m-old","status":"completed"}]`),
	}}
	w, _, _, renders := newWatchFixture(t, WithSnapshots(snaps))
	stop := runWatch(t, w, "s-1")
	defer stop()

	first := waitRender(t, renders)
	if len(first) != 1 || first[0].ID != "m-old" {
		t.Errorf("first render = %+v, want the persisted snapshot", first)
	}

	second := waitRender(t, renders)
	if len(second) != 1 || second[0].ID != "m-1" {
		t.Errorf("second render = %+v, want fresh data", second)
	}

	// The refresh must have overwritten the snapshot.
	snaps.mu.Lock()
	stored := string(snaps.data["matches:s-1"])
	snaps.mu.Unlock()
	if !strings.Contains(stored, "m-1") {
		t.Errorf("snapshot after refresh = %s, want fresh payload", stored)
	}
}
