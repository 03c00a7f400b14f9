// Package realtime maintains the websocket connection to the backend's
// push channel and delivers decoded events to a handler. Connection loss
// is never fatal: the listener reconnects with bounded exponential
// backoff and, once attempts are exhausted, goes quiet until restarted.
// Callers are expected to keep polling as the fallback path.
package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"

	"github.com/courtside-hq/courtside/internal/metrics"
)

// Default reconnect policy.
const (
	DefaultInitialInterval = 1 * time.Second
	DefaultMaxInterval     = 30 * time.Second
	DefaultMaxAttempts     = 10
)

// Event is a single push notification. The backend names the event and
// attaches the ids of the resources it touched; the payload carries
// nothing else a client would need, by contract.
type Event struct {
	Event     string `json:"event"`
	SessionID string `json:"session_id,omitempty"`
	MatchID   string `json:"match_id,omitempty"`
}

// Handler receives decoded events. It is called from the listener's read
// goroutine and must not block for long.
type Handler func(Event)

// TokenFunc supplies the bearer token for the websocket handshake. It is
// read at dial time so reconnects pick up rotated tokens.
type TokenFunc func() string

// Listener is a reconnecting websocket client for the event channel.
type Listener struct {
	url     string
	token   TokenFunc
	handler Handler

	logger  *slog.Logger
	metrics *metrics.Metrics
	dialer  *websocket.Dialer

	initialInterval time.Duration
	maxInterval     time.Duration
	maxAttempts     int

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// ListenerOption configures a Listener.
type ListenerOption func(*Listener)

// WithListenerLogger sets the logger.
func WithListenerLogger(logger *slog.Logger) ListenerOption {
	return func(l *Listener) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithListenerMetrics attaches metrics.
func WithListenerMetrics(m *metrics.Metrics) ListenerOption {
	return func(l *Listener) {
		l.metrics = m
	}
}

// WithDialer overrides the websocket dialer.
func WithDialer(d *websocket.Dialer) ListenerOption {
	return func(l *Listener) {
		if d != nil {
			l.dialer = d
		}
	}
}

// WithReconnectPolicy overrides the backoff intervals and attempt cap.
// Zero values keep the defaults.
func WithReconnectPolicy(initial, max time.Duration, attempts int) ListenerOption {
	return func(l *Listener) {
		if initial > 0 {
			l.initialInterval = initial
		}
		if max > 0 {
			l.maxInterval = max
		}
		if attempts > 0 {
			l.maxAttempts = attempts
		}
	}
}

// NewListener creates a Listener for the given websocket URL. The token
// func may return "" for anonymous connections.
func NewListener(url string, token TokenFunc, handler Handler, opts ...ListenerOption) *Listener {
	l := &Listener{
		url:             url,
		token:           token,
		handler:         handler,
		logger:          slog.Default(),
		dialer:          websocket.DefaultDialer,
		initialInterval: DefaultInitialInterval,
		maxInterval:     DefaultMaxInterval,
		maxAttempts:     DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start connects in the background and begins delivering events. A
// second Start while running is a no-op.
func (l *Listener) Start(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.done = make(chan struct{})
	l.running = true

	go l.run(runCtx)
}

// Stop tears the connection down and waits for the read goroutine to
// exit. Safe to call when not running.
func (l *Listener) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	cancel, done := l.cancel, l.done
	l.running = false
	l.mu.Unlock()

	cancel()
	<-done
}

func (l *Listener) run(ctx context.Context) {
	defer close(l.done)
	defer l.metrics.SetConnected(false)

	bo := l.newBackoff()
	attempts := 0
	for {
		if ctx.Err() != nil {
			return
		}

		conn, err := l.dial(ctx)
		if err != nil {
			attempts++
			if attempts >= l.maxAttempts {
				l.logger.Warn("realtime channel unavailable, giving up",
					"url", l.url, "attempts", attempts, "error", err)
				return
			}
			wait := bo.NextBackOff()
			if wait == backoff.Stop {
				return
			}
			l.logger.Debug("realtime dial failed, retrying",
				"url", l.url, "attempt", attempts, "wait", wait, "error", err)
			l.metrics.IncReconnect()
			if !sleepCtx(ctx, wait) {
				return
			}
			continue
		}

		// A live connection resets the outage budget.
		attempts = 0
		bo.Reset()
		l.metrics.SetConnected(true)
		l.logger.Info("realtime channel connected", "url", l.url)

		l.readLoop(ctx, conn)
		l.metrics.SetConnected(false)

		if ctx.Err() != nil {
			return
		}
		l.logger.Debug("realtime channel lost, reconnecting", "url", l.url)
		l.metrics.IncReconnect()
	}
}

func (l *Listener) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	if tok := l.token(); tok != "" {
		header.Set("Authorization", "Bearer "+tok)
	}
	conn, resp, err := l.dialer.DialContext(ctx, l.url, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	return conn, err
}

// readLoop reads frames until the connection drops or ctx is cancelled.
// Cancellation closes the connection to unblock the pending read.
func (l *Listener) readLoop(ctx context.Context, conn *websocket.Conn) {
	connCtx, connDone := context.WithCancel(ctx)
	defer connDone()
	go func() {
		<-connCtx.Done()
		_ = conn.Close()
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				l.logger.Debug("realtime read failed", "error", err)
			}
			return
		}

		var ev Event
		if err := json.Unmarshal(payload, &ev); err != nil || ev.Event == "" {
			l.logger.Debug("realtime frame skipped", "error", err, "size", len(payload))
			continue
		}

		l.metrics.IncEvent(ev.Event)
		if l.handler != nil {
			l.handler(ev)
		}
	}
}

func (l *Listener) newBackoff() *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = l.initialInterval
	bo.MaxInterval = l.maxInterval
	bo.MaxElapsedTime = 0 // attempts are bounded by maxAttempts, not wall time
	return bo
}

// sleepCtx waits for d or until ctx is done. Returns false on cancel.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
