// Package session holds the locally authenticated player's identity.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/lox/pokerclient/internal/fileutil"
)

// ErrIncomplete is returned when a session is missing its id or name.
var ErrIncomplete = errors.New("session: player id and username are both required")

// Session is the identity of the player using this client.
type Session struct {
	PlayerID string `json:"playerId"`
	Username string `json:"username"`
}

func (s Session) complete() bool {
	return s.PlayerID != "" && s.Username != ""
}

// Provider is the read side of the store, which is all the connection core needs.
type Provider interface {
	Current() (Session, bool)
}

// Store keeps the current session in memory and, when a path is set, in a
// JSON file so it survives restarts. It is created on login and cleared on
// logout or when the server no longer recognises the player.
type Store struct {
	path   string
	logger *log.Logger

	mu      sync.RWMutex
	current *Session
}

// NewStore creates a store backed by path. An empty path keeps the session
// in memory only.
func NewStore(path string, logger *log.Logger) *Store {
	return &Store{
		path:   path,
		logger: logger.WithPrefix("session"),
	}
}

// Open creates a store and loads any session persisted at path. A partially
// populated file is discarded.
func Open(path string, logger *log.Logger) (*Store, error) {
	s := NewStore(path, logger)
	if path == "" {
		return s, nil
	}

	data, ok, err := fileutil.ReadFileIfExists(path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return s, nil
	}

	var loaded Session
	if err := json.Unmarshal(data, &loaded); err != nil || !loaded.complete() {
		s.logger.Warn("Discarding unusable session file", "path", path, "error", err)
		if err := fileutil.RemoveIfExists(path); err != nil {
			return nil, err
		}
		return s, nil
	}

	s.current = &loaded
	s.logger.Debug("Loaded session", "playerId", loaded.PlayerID, "username", loaded.Username)
	return s, nil
}

// Current returns the session, if one is set.
func (s *Store) Current() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Session{}, false
	}
	return *s.current, true
}

// Set replaces the session. Both fields must be present.
func (s *Store) Set(sess Session) error {
	if !sess.complete() {
		return ErrIncomplete
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path != "" {
		data, err := json.Marshal(sess)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}
		if err := fileutil.WriteFileAtomic(s.path, data, 0600, 0700); err != nil {
			return fmt.Errorf("persist session: %w", err)
		}
	}

	s.current = &sess
	s.logger.Info("Session stored", "playerId", sess.PlayerID, "username", sess.Username)
	return nil
}

// Clear removes the session from memory and disk. Clearing an empty store is
// a no-op.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	if s.path != "" {
		if err := fileutil.RemoveIfExists(s.path); err != nil {
			return err
		}
	}
	s.logger.Info("Session cleared")
	return nil
}
