package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/VolkanCARBUGA/VintedClone/internal/config"
	"github.com/VolkanCARBUGA/VintedClone/internal/market"
	"github.com/VolkanCARBUGA/VintedClone/internal/session"
)

// Login signs in and saves the session for later runs.
func Login(ctx context.Context, opts Options, email, password string) (session.Session, error) {
	env, err := Open(opts)
	if err != nil {
		return session.Session{}, err
	}
	defer func() { _ = env.Close() }()

	s, err := env.Session.Authenticate(ctx, env.Client, email, password)
	if err != nil {
		env.Logger.Warn("login failed", "email", email, "error", err)
		return session.Session{}, err
	}
	env.Logger.Info("signed in", "user", s.User.Username)
	return s, nil
}

// Register creates an account and signs in with it.
func Register(ctx context.Context, opts Options, username, email, password string) (session.Session, error) {
	env, err := Open(opts)
	if err != nil {
		return session.Session{}, err
	}
	defer func() { _ = env.Close() }()

	s, err := env.Session.Register(ctx, env.Client, username, email, password)
	if err != nil {
		env.Logger.Warn("register failed", "email", email, "error", err)
		return session.Session{}, err
	}
	env.Logger.Info("registered", "user", s.User.Username)
	return s, nil
}

// ForgotPassword asks the API to send a reset link.
func ForgotPassword(ctx context.Context, opts Options, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}
	env, err := Open(opts)
	if err != nil {
		return err
	}
	defer func() { _ = env.Close() }()
	return env.Client.ForgotPassword(ctx, email)
}

// Logout forgets the saved session.
func Logout(opts Options) error {
	env, err := Open(opts)
	if err != nil {
		return err
	}
	defer func() { _ = env.Close() }()

	if err := env.Session.Logout(); err != nil {
		return err
	}
	env.Logger.Info("signed out")
	return nil
}

// WhoAmI returns the saved session and, when the API answers, the full
// profile behind it.
func WhoAmI(ctx context.Context, opts Options) (session.Session, *market.User, error) {
	env, err := Open(opts)
	if err != nil {
		return session.Session{}, nil, err
	}
	defer func() { _ = env.Close() }()

	s, ok := env.Session.Current()
	if !ok {
		return session.Session{}, nil, session.ErrNotSignedIn
	}
	profile, err := env.Client.User(ctx, s.User.ID)
	if err != nil {
		env.Logger.Warn("profile fetch failed", "user", s.User.ID, "error", err)
		return s, nil, nil
	}
	return s, profile, nil
}

// LogPath returns the resolved client log file.
func LogPath(opts Options) (string, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}
	return cfg.LogFile, nil
}
