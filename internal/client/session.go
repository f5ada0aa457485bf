package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/sakif/pinboard/internal/model"
)

// Session holds the caller's token and profile. It is shared by every
// request the Client sends and, when created with LoadSession, mirrored to a
// JSON file so the CLI stays logged in between runs.
type Session struct {
	mu    sync.RWMutex
	token string
	user  *model.User
	path  string
}

type sessionFile struct {
	Token string      `json:"token"`
	User  *model.User `json:"user,omitempty"`
}

// NewSession returns an empty in-memory session.
func NewSession() *Session {
	return &Session{}
}

// LoadSession reads the session stored at path. A missing file yields an
// empty session that will be saved to path on login.
func LoadSession(path string) (*Session, error) {
	s := &Session{path: path}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("client: reading session %s: %w", path, err)
	}

	var f sessionFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("client: decoding session %s: %w", path, err)
	}
	s.token = f.Token
	s.user = f.User
	return s, nil
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the logged-in user, or nil.
func (s *Session) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// Set stores a fresh login and persists it.
func (s *Session) Set(token string, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	if user != nil {
		u := *user
		s.user = &u
	} else {
		s.user = nil
	}
	return s.saveLocked()
}

// Clear forgets the login and removes the session file.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("client: removing session %s: %w", s.path, err)
	}
	return nil
}

func (s *Session) saveLocked() error {
	if s.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(sessionFile{Token: s.token, User: s.user}, "", "  ")
	if err != nil {
		return fmt.Errorf("client: encoding session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("client: creating session directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("client: writing session %s: %w", s.path, err)
	}
	return nil
}
