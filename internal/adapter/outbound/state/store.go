package state

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"
)

// CredentialStore manages reading and writing the credentials.json file.
// It provides atomic writes (write-tmp-then-rename), automatic backups,
// file locking (flock for cross-process, mutex for in-process), and a token
// mirror file updated in the same Save operation.
//
// The mirror file holds only the current access token. It is the coarse
// pre-command gate's input: present means "probably logged in", absent means
// "definitely not". The credentials.json record stays authoritative.
type CredentialStore struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

// NewCredentialStore creates a new CredentialStore for the given file path.
func NewCredentialStore(path string, logger *slog.Logger) *CredentialStore {
	return &CredentialStore{
		path:   path,
		logger: logger,
	}
}

// Load reads and parses the credentials.json file.
// If the file does not exist, it returns DefaultState().
// If the file contains invalid JSON, it returns an error.
// Warns if the existing file has permissions more open than 0600.
func (s *CredentialStore) Load() (*CredentialState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Debug("credential file not found, starting logged out", "path", s.path)
			return s.DefaultState(), nil
		}
		return nil, fmt.Errorf("read credential file: %w", err)
	}

	// Tokens must not be readable by group or other. Skip on Windows where
	// Unix permission bits are not supported.
	if runtime.GOOS != "windows" {
		if info, statErr := os.Stat(s.path); statErr == nil {
			mode := info.Mode().Perm()
			if mode&0077 != 0 {
				s.logger.Warn("credential file has too-open permissions, should be 0600",
					"path", s.path, "current_mode", fmt.Sprintf("%04o", mode))
			}
		}
	}

	var state CredentialState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse credential file: %w", err)
	}

	return &state, nil
}

// Save writes the CredentialState to disk atomically and updates the token
// mirror in the same operation, so the two can never drift.
//
// The write sequence is:
//  1. Acquire in-process mutex
//  2. Acquire flock on path+".lock"
//  3. Copy current file to path+".bak" (ignored if no current file)
//  4. Marshal state as indented JSON
//  5. Write to path+".tmp" with 0600 permissions, fsync, rename over path
//  6. Write or remove the token mirror
//  7. Release flock and mutex
func (s *CredentialStore) Save(state *CredentialState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state.UpdatedAt = time.Now().UTC()
	if state.CreatedAt.IsZero() {
		state.CreatedAt = state.UpdatedAt
	}
	if state.Version == "" {
		state.Version = "1"
	}

	// Acquire cross-process file lock.
	lockPath := s.path + ".lock"
	lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer func() { _ = lockFile.Close() }()

	if err := flockLock(lockFile.Fd()); err != nil {
		return fmt.Errorf("acquire file lock: %w", err)
	}
	defer flockUnlock(lockFile.Fd()) //nolint:errcheck

	// Create backup of current file (ignore error if file doesn't exist).
	if currentData, readErr := os.ReadFile(s.path); readErr == nil {
		bakPath := s.path + ".bak"
		if writeErr := os.WriteFile(bakPath, currentData, 0600); writeErr != nil {
			s.logger.Warn("failed to create backup", "error", writeErr)
		}
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal credential state: %w", err)
	}
	data = append(data, '\n')

	if err := s.writeAtomic(data); err != nil {
		return err
	}

	// Ensure 0600 permissions after rename as a safety net.
	if err := os.Chmod(s.path, 0600); err != nil {
		s.logger.Warn("failed to set permissions on credential file", "error", err)
	}

	if err := s.writeMirror(state); err != nil {
		return err
	}

	s.logger.Debug("credential state saved", "path", s.path, "authenticated", state.Authenticated)
	return nil
}

// writeMirror writes the access token mirror next to the credential file,
// or removes it when logged out. Must be called with the flock held.
func (s *CredentialStore) writeMirror(state *CredentialState) error {
	mirror := s.MirrorPath()
	if !state.Authenticated || state.AccessToken == "" {
		if err := os.Remove(mirror); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove token mirror: %w", err)
		}
		return nil
	}
	if err := os.WriteFile(mirror, []byte(state.AccessToken+"\n"), 0600); err != nil {
		return fmt.Errorf("write token mirror: %w", err)
	}
	return nil
}

// writeAtomic writes data to a temp file, fsyncs it, and renames it
// over the target path. On any error the temp file is cleaned up.
func (s *CredentialStore) writeAtomic(data []byte) error {
	tmpPath := s.path + ".tmp"

	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	cleanup := func() {
		_ = f.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := f.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("fsync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp to credential file: %w", err)
	}
	return nil
}

// DefaultState returns a fresh logged-out CredentialState.
func (s *CredentialStore) DefaultState() *CredentialState {
	now := time.Now().UTC()
	return &CredentialState{
		Version:   "1",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MirrorToken reads the access token mirror. Returns an empty string when
// the mirror is absent, i.e. nobody is logged in.
func (s *CredentialStore) MirrorToken() string {
	data, err := os.ReadFile(s.MirrorPath())
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// MirrorPath returns the path of the token mirror file.
func (s *CredentialStore) MirrorPath() string {
	return s.path + ".token"
}

// Exists returns true if the credential file exists on disk.
func (s *CredentialStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Path returns the configured file path.
func (s *CredentialStore) Path() string {
	return s.path
}

// Reset removes the credential file, its mirror, backup, and lock file.
// Used by "courtside reset" and "courtside logout --purge".
func (s *CredentialStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range []string{s.path, s.MirrorPath(), s.path + ".bak", s.path + ".lock", s.path + ".tmp"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	return nil
}
