// Package config provides configuration types and loading for the
// courtside client.
//
// Configuration is deliberately small: where the backend lives, where
// the credential file lives, and tuning knobs for the cache and the
// realtime channel. Everything has a default so a bare `courtside login`
// works against a local backend with no file at all.
package config

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config is the top-level configuration for the courtside client.
type Config struct {
	// APIBaseURL is the base URL of the courtside backend REST API.
	// Defaults to "http://localhost:8000".
	APIBaseURL string `yaml:"api_base_url" mapstructure:"api_base_url" validate:"required,url"`

	// WSURL is the websocket endpoint for the realtime channel. When empty
	// it is derived from APIBaseURL ("/ws", http->ws scheme).
	WSURL string `yaml:"ws_url" mapstructure:"ws_url" validate:"omitempty,url"`

	// Timeout is the per-request HTTP timeout (e.g. "15s").
	Timeout string `yaml:"timeout" mapstructure:"timeout" validate:"omitempty,duration"`

	// StatePath is where the credential file lives.
	// Defaults to ~/.courtside/credentials.json.
	StatePath string `yaml:"state_path" mapstructure:"state_path"`

	// LogLevel sets the minimum log level: "debug", "info", "warn", "error".
	// Defaults to "info". DevMode overrides to "debug".
	LogLevel string `yaml:"log_level" mapstructure:"log_level" validate:"omitempty,oneof=debug info warn warning error"`

	// Cache tunes the query cache.
	Cache CacheConfig `yaml:"cache" mapstructure:"cache"`

	// Realtime tunes the websocket reconnect policy.
	Realtime RealtimeConfig `yaml:"realtime" mapstructure:"realtime"`

	// Live tunes the polling live views.
	Live LiveConfig `yaml:"live" mapstructure:"live"`

	// DevMode enables development features (debug logging).
	DevMode bool `yaml:"dev_mode" mapstructure:"dev_mode"`
}

// CacheConfig tunes the query cache.
type CacheConfig struct {
	// TTL is how long a cached entry counts as fresh (e.g. "30s").
	TTL string `yaml:"ttl" mapstructure:"ttl" validate:"omitempty,duration"`

	// MaxEntries bounds the cache size.
	MaxEntries int `yaml:"max_entries" mapstructure:"max_entries" validate:"omitempty,min=1"`

	// SnapshotPath enables the persistent snapshot tier when set. Empty
	// disables it. Defaults to empty.
	SnapshotPath string `yaml:"snapshot_path" mapstructure:"snapshot_path"`
}

// RealtimeConfig tunes the websocket reconnect policy.
type RealtimeConfig struct {
	// InitialInterval is the first reconnect delay (e.g. "1s").
	InitialInterval string `yaml:"initial_interval" mapstructure:"initial_interval" validate:"omitempty,duration"`

	// MaxInterval caps the reconnect delay (e.g. "30s").
	MaxInterval string `yaml:"max_interval" mapstructure:"max_interval" validate:"omitempty,duration"`

	// MaxAttempts is how many consecutive failures end the outage budget.
	MaxAttempts int `yaml:"max_attempts" mapstructure:"max_attempts" validate:"omitempty,min=1"`
}

// LiveConfig tunes the polling live views.
type LiveConfig struct {
	// PollInterval is the refresh interval for live/watch views (e.g. "5s").
	PollInterval string `yaml:"poll_interval" mapstructure:"poll_interval" validate:"omitempty,duration"`
}

// SetDefaults applies default values to unset fields.
func (c *Config) SetDefaults() {
	if c.APIBaseURL == "" {
		c.APIBaseURL = "http://localhost:8000"
	}
	if c.WSURL == "" {
		c.WSURL = deriveWSURL(c.APIBaseURL)
	}
	if c.Timeout == "" {
		c.Timeout = "15s"
	}
	if c.StatePath == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.StatePath = filepath.Join(home, ".courtside", "credentials.json")
		} else {
			c.StatePath = "credentials.json"
		}
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Cache.TTL == "" {
		c.Cache.TTL = "30s"
	}
	if c.Cache.MaxEntries == 0 {
		c.Cache.MaxEntries = 512
	}
	if c.Realtime.InitialInterval == "" {
		c.Realtime.InitialInterval = "1s"
	}
	if c.Realtime.MaxInterval == "" {
		c.Realtime.MaxInterval = "30s"
	}
	if c.Realtime.MaxAttempts == 0 {
		c.Realtime.MaxAttempts = 10
	}
	if c.Live.PollInterval == "" {
		c.Live.PollInterval = "5s"
	}
}

// SetDevDefaults applies development-mode overrides. Applied after
// SetDefaults and any CLI flag overrides.
func (c *Config) SetDevDefaults() {
	if !c.DevMode {
		return
	}
	c.LogLevel = "debug"
}

// RequestTimeout returns Timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return parseDuration(c.Timeout, 15*time.Second)
}

// TTL returns the cache TTL as a duration.
func (c *CacheConfig) TTLDuration() time.Duration {
	return parseDuration(c.TTL, 30*time.Second)
}

// InitialIntervalDuration returns the first reconnect delay.
func (c *RealtimeConfig) InitialIntervalDuration() time.Duration {
	return parseDuration(c.InitialInterval, time.Second)
}

// MaxIntervalDuration returns the reconnect delay cap.
func (c *RealtimeConfig) MaxIntervalDuration() time.Duration {
	return parseDuration(c.MaxInterval, 30*time.Second)
}

// PollIntervalDuration returns the live poll interval.
func (c *LiveConfig) PollIntervalDuration() time.Duration {
	return parseDuration(c.PollInterval, 5*time.Second)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// deriveWSURL turns an API base URL into the realtime endpoint:
// http -> ws, https -> wss, path fixed at /ws.
func deriveWSURL(apiBase string) string {
	u, err := url.Parse(apiBase)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	return u.String()
}
