// Package session holds the client's view of "who is logged in". A
// single store owns the persisted credentials file; a manager keeps an
// in-memory session in sync with it and fans changes out to
// subscribers.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const credentialsFile = "session.json"

// Credentials is the persisted session: exactly three string fields.
// The token stands in for the password; the password itself is never
// written to disk.
type Credentials struct {
	Email string `json:"email"`
	Token string `json:"token"`
	Role  string `json:"role"`
}

// Store owns all reads and writes of the credentials file. Other
// processes (or another command run in parallel) may mutate the same
// file; Watch surfaces those changes.
type Store struct {
	path   string
	logger *zap.Logger
}

// NewStore creates a store at an explicit path.
func NewStore(path string, logger *zap.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// DefaultStore places the credentials file under the user config dir.
func DefaultStore(logger *zap.Logger) (*Store, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("resolving user config dir: %w", err)
	}
	return NewStore(filepath.Join(dir, "nopaper", credentialsFile), logger), nil
}

// Path returns the credentials file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted credentials. A missing file is an empty,
// unauthenticated session, not an error.
func (s *Store) Load() (Credentials, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Credentials{}, nil
		}
		return Credentials{}, fmt.Errorf("reading credentials: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(raw, &creds); err != nil {
		// A torn or corrupt file reads as logged out rather than
		// crashing every command.
		s.logger.Warn("Corrupt credentials file, treating as logged out", zap.Error(err))
		return Credentials{}, nil
	}
	return creds, nil
}

// Save persists the credentials atomically (temp file + rename) so a
// concurrent reader or watcher never observes a partial session.
func (s *Store) Save(creds Credentials) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating credentials dir: %w", err)
	}

	raw, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), credentialsFile+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp credentials file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("writing credentials: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("restricting credentials permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing credentials file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("installing credentials file: %w", err)
	}
	return nil
}

// Clear removes the persisted credentials entirely: all three fields
// are gone at once.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing credentials: %w", err)
	}
	return nil
}

// Watch emits a signal whenever the credentials file changes on disk,
// until ctx is done. This is the cross-process analogue of a storage
// change event; there is deliberately no fallback polling timer. If the
// watcher cannot be established the session just stays as fresh as the
// last explicit operation, which is a silent degradation, not an error.
func (s *Store) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	// Watch the directory: renames (our atomic saves) and removals
	// (logout) don't fire reliably on a watched file itself.
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("creating credentials dir: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching credentials dir: %w", err)
	}

	events := make(chan struct{}, 1)
	go func() {
		defer watcher.Close()
		defer close(events)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != credentialsFile {
					continue
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				select {
				case events <- struct{}{}:
				default:
					// A signal is already pending; the resync it
					// triggers will read the latest state anyway.
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("Credentials watcher error", zap.Error(err))
			}
		}
	}()

	return events, nil
}
