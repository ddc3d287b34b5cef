// Package session owns the signed-in user's token and profile. The Manager is
// the single writer; everything else reads copies.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/VolkanCARBUGA/VintedClone/internal/market"
)

// ErrNotSignedIn is returned by operations that need a session.
var ErrNotSignedIn = errors.New("not signed in")

// Session is the authenticated identity. The zero value means signed out.
type Session struct {
	Token string             `toml:"token"`
	User  market.UserSummary `toml:"user"`
}

// SignedIn reports whether the session carries a token.
func (s Session) SignedIn() bool {
	return strings.TrimSpace(s.Token) != ""
}

// Store persists a Session between runs.
type Store interface {
	Load() (Session, error)
	Save(Session) error
	Clear() error
}

// Manager holds the current Session.
type Manager struct {
	store Store

	mu      sync.RWMutex
	current Session
}

var _ market.TokenSource = (*Manager)(nil)

// NewManager returns a signed-out Manager backed by store. A nil store keeps
// the session in memory only.
func NewManager(store Store) *Manager {
	if store == nil {
		store = &MemoryStore{}
	}
	return &Manager{store: store}
}

// Init loads the persisted session. A missing session is not an error.
func (m *Manager) Init() error {
	s, err := m.store.Load()
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
	return nil
}

// Current returns a copy of the session and whether it is signed in.
func (m *Manager) Current() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current, m.current.SignedIn()
}

// Token returns the bearer token, or "" when signed out.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.Token
}

// UserID returns the signed-in user's id, or "".
func (m *Manager) UserID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.User.ID
}

// Authenticate logs in and persists the resulting session.
func (m *Manager) Authenticate(ctx context.Context, auth market.Authenticator, email, password string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Session{}, fmt.Errorf("email and password are required")
	}
	resp, err := auth.Login(ctx, email, password)
	if err != nil {
		return Session{}, err
	}
	return m.adopt(resp)
}

// Register creates an account and persists the resulting session.
func (m *Manager) Register(ctx context.Context, auth market.Authenticator, username, email, password string) (Session, error) {
	username, email = strings.TrimSpace(username), strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return Session{}, fmt.Errorf("username, email and password are required")
	}
	resp, err := auth.Register(ctx, username, email, password)
	if err != nil {
		return Session{}, err
	}
	return m.adopt(resp)
}

// Rename records a new username for the signed-in user after a profile
// update.
func (m *Manager) Rename(username string) error {
	m.mu.Lock()
	if !m.current.SignedIn() {
		m.mu.Unlock()
		return ErrNotSignedIn
	}
	m.current.User.Username = username
	s := m.current
	m.mu.Unlock()
	if err := m.store.Save(s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Logout clears the session in memory and on disk.
func (m *Manager) Logout() error {
	m.mu.Lock()
	m.current = Session{}
	m.mu.Unlock()
	if err := m.store.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (m *Manager) adopt(resp *market.AuthResponse) (Session, error) {
	if resp == nil || strings.TrimSpace(resp.Token) == "" {
		return Session{}, fmt.Errorf("auth response carried no token")
	}
	s := Session{Token: resp.Token, User: resp.User}
	if err := m.store.Save(s); err != nil {
		return Session{}, fmt.Errorf("save session: %w", err)
	}
	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
	return s, nil
}
