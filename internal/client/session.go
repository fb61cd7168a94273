package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hirmezb/tasktracker/internal/dto"
)

// Filter is the list filter remembered between invocations.
// Completed is "", "true" or "false".
type Filter struct {
	Priority  string `json:"priority,omitempty"`
	Category  string `json:"category,omitempty"`
	Completed string `json:"completed,omitempty"`
}

// Session is what the client keeps on disk between runs.
type Session struct {
	Token  string           `json:"token,omitempty"`
	User   dto.UserResponse `json:"user"`
	Filter Filter           `json:"filter"`
}

// LoggedIn reports whether a token is present.
func (s Session) LoggedIn() bool { return s.Token != "" }

// SessionStore persists a Session as a JSON file readable only by the owner.
type SessionStore struct {
	path string
}

func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

// DefaultSessionPath is <user config dir>/taskctl/session.json.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("user config dir: %w", err)
	}
	return filepath.Join(dir, "taskctl", "session.json"), nil
}

func (s *SessionStore) Path() string { return s.path }

// Load returns the stored session, or an empty one if nothing was saved yet.
func (s *SessionStore) Load() (Session, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("read session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return Session{}, fmt.Errorf("decode session %s: %w", s.path, err)
	}
	return sess, nil
}

func (s *SessionStore) Save(sess Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	b, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, b, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// ClearAuth drops the token and user but keeps the saved filter.
func (s *SessionStore) ClearAuth() error {
	sess, err := s.Load()
	if err != nil {
		sess = Session{}
	}
	sess.Token = ""
	sess.User = dto.UserResponse{}
	return s.Save(sess)
}
