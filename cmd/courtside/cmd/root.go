// Package cmd provides the CLI commands for the courtside client.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/courtside-hq/courtside/internal/adapter/outbound/rest"
	"github.com/courtside-hq/courtside/internal/adapter/outbound/state"
	"github.com/courtside-hq/courtside/internal/config"
	"github.com/courtside-hq/courtside/internal/domain/auth"
	"github.com/courtside-hq/courtside/internal/gate"
)

var (
	cfgFile   string
	statePath string
	devMode   bool
)

var rootCmd = &cobra.Command{
	Use:   "courtside",
	Short: "Courtside - badminton club client",
	Long: `Courtside is a command-line client for the courtside badminton club
service: sessions, registrations, matches, scores, and leaderboards.

Quick start:
  1. courtside login
  2. courtside clubs list
  3. courtside watch <session-id>

Configuration:
  Config is loaded from courtside.yaml in the current directory,
  $HOME/.courtside/, or /etc/courtside/.

  Environment variables can override config values with the COURTSIDE_ prefix.
  Example: COURTSIDE_API_BASE_URL=https://courts.example.com`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./courtside.yaml)")
	rootCmd.PersistentFlags().StringVar(&statePath, "state", "", "credential file (default: ~/.courtside/credentials.json)")
	rootCmd.PersistentFlags().BoolVar(&devMode, "dev", false, "development mode (debug logging)")
}

func initConfig() {
	config.InitViper(cfgFile)
}

// app holds the wired components every command needs.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *state.CredentialStore
	creds  *auth.Store
	client *rest.Client
}

// newApp loads config, restores the persisted credential, and builds the
// REST client. When requireAuth is set the token-mirror gate runs first
// so protected commands fail before any network traffic.
func newApp(requireAuth bool) (*app, error) {
	cfg, err := config.LoadConfigRaw()
	if err != nil {
		return nil, err
	}
	if devMode {
		cfg.DevMode = true
	}
	if statePath != "" {
		cfg.StatePath = statePath
	}
	cfg.SetDevDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	store := state.NewCredentialStore(cfg.StatePath, logger)

	if requireAuth {
		if err := gate.RequireLogin(store); err != nil {
			return nil, err
		}
	}

	// Every credential change (login, rotation, logout) is written back so
	// the file and the in-memory store never drift.
	creds := auth.NewStore(auth.WithOnChange(func(cred auth.Credential) {
		st, loadErr := store.Load()
		if loadErr != nil {
			st = store.DefaultState()
		}
		st.SetCredential(cred)
		if saveErr := store.Save(st); saveErr != nil {
			logger.Error("failed to persist credentials", "error", saveErr)
		}
	}))

	if st, loadErr := store.Load(); loadErr == nil {
		creds.Restore(st.Credential())
	} else {
		logger.Warn("credential file unreadable, starting logged out", "error", loadErr)
	}

	client := rest.NewClient(cfg.APIBaseURL, creds,
		rest.WithTimeout(cfg.RequestTimeout()),
		rest.WithLogger(logger),
	)

	return &app{
		cfg:    cfg,
		logger: logger,
		store:  store,
		creds:  creds,
		client: client,
	}, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
