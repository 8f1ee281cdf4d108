package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Session is the locally held login state.
type Session struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// IsAuthenticated reports whether the session holds a token. The token is
// not checked for expiry; the server decides that.
func (s Session) IsAuthenticated() bool {
	return s.Token != ""
}

// SessionStore persists a Session across process runs.
type SessionStore interface {
	Load() (Session, error)
	Save(Session) error
	Clear() error
}

// FileSessionStore keeps the session as a JSON file readable only by the
// current user.
type FileSessionStore struct {
	mu   sync.Mutex
	path string
}

// NewFileSessionStore returns a store backed by path. The file is created on
// first Save.
func NewFileSessionStore(path string) *FileSessionStore {
	return &FileSessionStore{path: path}
}

// DefaultSessionPath returns the per-user session file location.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config dir: %w", err)
	}
	return filepath.Join(dir, "userauth", "session.json"), nil
}

// Load returns the stored session, or an empty one if none exists.
func (s *FileSessionStore) Load() (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("reading session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, fmt.Errorf("decoding session: %w", err)
	}
	// A half-written pair is treated as logged out.
	if sess.Token == "" || sess.Email == "" {
		return Session{}, nil
	}
	return sess, nil
}

// Save replaces the stored session.
func (s *FileSessionStore) Save(sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing session: %w", err)
	}
	return nil
}

// Clear removes the stored session. Clearing an absent session is not an
// error.
func (s *FileSessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing session: %w", err)
	}
	return nil
}
