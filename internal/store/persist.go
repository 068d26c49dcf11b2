package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/joshua-takyi/evently/internal/models"
)

// Session is the signed-in user and tokens cached between launches.
type Session struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresAt    time.Time    `json:"expires_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return s == nil || s.AccessToken == "" || (!s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt))
}

// Persister stores the session on the device. Load returns nil, nil when
// nothing is stored.
type Persister interface {
	Load() (*Session, error)
	Save(s *Session) error
	Clear() error
}

// FilePersister keeps the session in a JSON file readable only by the owner.
type FilePersister struct {
	Path string
	mu   sync.Mutex
}

func NewFilePersister(path string) *FilePersister {
	return &FilePersister{Path: path}
}

// DefaultSessionPath is <user config dir>/evently/session.json.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("no config directory: %w", err)
	}
	return filepath.Join(dir, "evently", "session.json"), nil
}

func (p *FilePersister) Load() (*Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	raw, err := os.ReadFile(p.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("corrupt session file %s: %w", p.Path, err)
	}
	return &s, nil
}

// Save writes through a temp file so a crash never leaves half a session.
func (p *FilePersister) Save(s *Session) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p.Path), 0o700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}
	tmp := p.Path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := os.Rename(tmp, p.Path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (p *FilePersister) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := os.Remove(p.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// MemoryPersister keeps the session in memory only.
type MemoryPersister struct {
	mu sync.Mutex
	s  *Session
}

func (m *MemoryPersister) Load() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.s == nil {
		return nil, nil
	}
	cp := *m.s
	return &cp, nil
}

func (m *MemoryPersister) Save(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.s = &cp
	return nil
}

func (m *MemoryPersister) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = nil
	return nil
}
