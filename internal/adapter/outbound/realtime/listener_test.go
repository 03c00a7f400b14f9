package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/goleak"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestListenerDeliversEvents(t *testing.T) {
	defer goleak.VerifyNone(t)

	var gotAuth atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"registration_updated","session_id":"s-1"}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"score_updated","match_id":"m-1","session_id":"s-1"}`))
		// Hold the connection open until the client hangs up.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	events := make(chan Event, 4)
	listener := NewListener(wsURL(server),
		func() string { return "tok-1" },
		func(ev Event) { events <- ev },
	)

	listener.Start(context.Background())
	defer listener.Stop()

	first := waitEvent(t, events)
	if first.Event != "registration_updated" || first.SessionID != "s-1" {
		t.Errorf("first event = %+v", first)
	}
	second := waitEvent(t, events)
	if second.Event != "score_updated" || second.MatchID != "m-1" {
		t.Errorf("second event = %+v", second)
	}
	if auth, _ := gotAuth.Load().(string); auth != "Bearer tok-1" {
		t.Errorf("handshake auth = %q, want Bearer tok-1", auth)
	}
}

func TestListenerSkipsMalformedFrames(t *testing.T) {
	defer goleak.VerifyNone(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`not json`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"session_id":"no-event-name"}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"match_started","session_id":"s-2"}`))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	events := make(chan Event, 4)
	listener := NewListener(wsURL(server),
		func() string { return "" },
		func(ev Event) { events <- ev },
	)

	listener.Start(context.Background())
	defer listener.Stop()

	ev := waitEvent(t, events)
	if ev.Event != "match_started" || ev.SessionID != "s-2" {
		t.Errorf("event = %+v, malformed frames should have been dropped", ev)
	}
}

func TestListenerReconnectsAfterDrop(t *testing.T) {
	defer goleak.VerifyNone(t)

	var connections atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := connections.Add(1)
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		if n == 1 {
			// Drop the first connection immediately after one event.
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"match_started","session_id":"s-1"}`))
			return
		}
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"score_updated","match_id":"m-9","session_id":"s-1"}`))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	events := make(chan Event, 4)
	listener := NewListener(wsURL(server),
		func() string { return "" },
		func(ev Event) { events <- ev },
		WithReconnectPolicy(10*time.Millisecond, 50*time.Millisecond, 5),
	)

	listener.Start(context.Background())
	defer listener.Stop()

	_ = waitEvent(t, events) // from the first, short-lived connection
	ev := waitEvent(t, events)
	if ev.Event != "score_updated" || ev.MatchID != "m-9" {
		t.Errorf("event after reconnect = %+v", ev)
	}
	if got := connections.Load(); got < 2 {
		t.Errorf("connections = %d, want at least 2", got)
	}
}

func TestListenerStartIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	var connections atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		connections.Add(1)
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	listener := NewListener(wsURL(server), func() string { return "" }, nil)
	listener.Start(context.Background())
	listener.Start(context.Background())
	listener.Start(context.Background())

	time.Sleep(100 * time.Millisecond)
	listener.Stop()

	if got := connections.Load(); got != 1 {
		t.Errorf("connections = %d after repeated Start, want 1", got)
	}
}

func TestListenerGivesUpAfterAttemptBudget(t *testing.T) {
	defer goleak.VerifyNone(t)

	// Nothing listens here.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := wsURL(server)
	server.Close()

	listener := NewListener(url, func() string { return "" }, nil,
		WithReconnectPolicy(time.Millisecond, 5*time.Millisecond, 3),
	)

	listener.Start(context.Background())

	select {
	case <-listener.done:
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not give up within the attempt budget")
	}
	listener.Stop()
}

func TestListenerStopIsSafeWhenNotRunning(t *testing.T) {
	listener := NewListener("ws://127.0.0.1:1", func() string { return "" }, nil)
	listener.Stop()
	listener.Stop()
}

func waitEvent(t *testing.T, events <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}
