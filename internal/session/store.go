package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
)

const defaultSessionPath = "~/.config/vinted/session.toml"

// DefaultPath returns the default session file path.
func DefaultPath() string {
	return defaultSessionPath
}

// FileStore keeps the session in a TOML file readable only by the owner.
type FileStore struct {
	Path string
}

// Load reads the session file. A missing or unreadable file yields a
// signed-out session.
func (f FileStore) Load() (Session, error) {
	resolved, err := expandPath(f.path())
	if err != nil {
		return Session{}, nil
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return Session{}, nil // Graceful degradation
	}
	var s Session
	if err := toml.Unmarshal(data, &s); err != nil {
		return Session{}, nil // Corrupt file means signed out
	}
	return s, nil
}

// Save writes the session with mode 0600.
func (f FileStore) Save(s Session) error {
	resolved, err := expandPath(f.path())
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := os.WriteFile(resolved, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return os.Chmod(resolved, 0o600)
}

// Clear removes the session file.
func (f FileStore) Clear() error {
	resolved, err := expandPath(f.path())
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if err := os.Remove(resolved); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

func (f FileStore) path() string {
	if strings.TrimSpace(f.Path) == "" {
		return defaultSessionPath
	}
	return f.Path
}

// MemoryStore keeps the session in memory.
type MemoryStore struct {
	mu sync.Mutex
	s  Session
}

func (m *MemoryStore) Load() (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s, nil
}

func (m *MemoryStore) Save(s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = s
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = Session{}
	return nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
