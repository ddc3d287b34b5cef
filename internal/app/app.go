package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/VolkanCARBUGA/VintedClone/internal/catalog"
	"github.com/VolkanCARBUGA/VintedClone/internal/chat"
	"github.com/VolkanCARBUGA/VintedClone/internal/config"
	"github.com/VolkanCARBUGA/VintedClone/internal/logging"
	"github.com/VolkanCARBUGA/VintedClone/internal/market"
	"github.com/VolkanCARBUGA/VintedClone/internal/optimistic"
	"github.com/VolkanCARBUGA/VintedClone/internal/prefs"
	"github.com/VolkanCARBUGA/VintedClone/internal/session"
	"github.com/VolkanCARBUGA/VintedClone/internal/ui"
)

const availabilityTimeout = 3 * time.Second

// Options configure the vinted application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/vinted/prefs.toml
	APIURL     string // overrides config file and environment
	LogLevel   string // overrides config file and environment
}

// Env holds the dependencies shared by the TUI and the account commands.
type Env struct {
	Config  config.Config
	Logger  *slog.Logger
	Session *session.Manager
	Client  *market.Client

	logFile *os.File
}

// Open loads configuration, opens the log file, restores the saved session
// and builds an API client that sends its token.
func Open(opts Options) (*Env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.APIURL != "" {
		cfg.APIURL = opts.APIURL
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	logger, logFile, err := logging.OpenFile(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}

	env := &Env{Config: cfg, Logger: logger, logFile: logFile}

	env.Session = session.NewManager(session.FileStore{Path: cfg.SessionFile})
	if err := env.Session.Init(); err != nil {
		_ = env.Close()
		return nil, err
	}

	env.Client, err = market.NewClient(cfg.APIURL,
		market.WithTokenSource(env.Session),
		market.WithTimeout(cfg.RequestTimeout),
	)
	if err != nil {
		_ = env.Close()
		return nil, fmt.Errorf("init api client: %w", err)
	}
	return env, nil
}

// Close releases the log file.
func (e *Env) Close() error {
	if e == nil || e.logFile == nil {
		return nil
	}
	return e.logFile.Close()
}

// Run boots the vinted TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	env, err := Open(opts)
	if err != nil {
		return err
	}
	defer func() { _ = env.Close() }()

	sess, ok := env.Session.Current()
	if !ok {
		return fmt.Errorf("%w: run `vinted login` first", session.ErrNotSignedIn)
	}

	if err := ensureAPIAvailable(ctx, env.Client); err != nil {
		return err
	}

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		env.Logger.Warn("load prefs failed", "error", err)
	}

	cfg := env.Config
	logger := env.Logger
	ctrl := optimistic.New(
		optimistic.WithTimeout(cfg.MutationTimeout),
		optimistic.WithLogger(logger),
	)

	logger.Info("starting", "api", env.Client.BaseURL(), "user", sess.User.Username)
	defer logger.Info("stopped")

	return ui.Run(ui.Options{
		Context:      ctx,
		Catalog:      catalog.New(env.Client, ctrl, catalog.WithLogger(logger)),
		Messenger:    env.Client,
		Inbox:        chat.NewInbox(env.Client, chat.WithLogger(logger), chat.WithSelf(sess.User.ID)),
		Logger:       logger,
		UserID:       sess.User.ID,
		Username:     sess.User.Username,
		InboxPoll:    cfg.ConversationPoll,
		ThreadPoll:   cfg.MessagePoll,
		ThemeName:    userPrefs.Theme,
		StartView:    userPrefs.StartView,
		InitialQuery: userPrefs.Query(),
		PrefsPath:    opts.PrefsPath,
		LogPath:      cfg.LogFile,
	})
}

// ensureAPIAvailable fails fast when the API is down or the saved token has
// been revoked, before the terminal is taken over.
func ensureAPIAvailable(ctx context.Context, client *market.Client) error {
	ctx, cancel := context.WithTimeout(ctx, availabilityTimeout)
	defer cancel()

	_, err := client.Products(ctx, market.ProductQuery{Limit: 1})
	switch {
	case err == nil:
		return nil
	case market.IsUnauthorized(err):
		return fmt.Errorf("%w: session was rejected, run `vinted login`", session.ErrNotSignedIn)
	case market.KindOf(err) == market.KindTransport, errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("marketplace API unreachable at %s: %w", client.BaseURL(), err)
	default:
		return fmt.Errorf("check marketplace API: %w", err)
	}
}
