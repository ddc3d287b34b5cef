package ui

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/VolkanCARBUGA/VintedClone/internal/catalog"
	"github.com/VolkanCARBUGA/VintedClone/internal/chat"
	"github.com/VolkanCARBUGA/VintedClone/internal/market"
	"github.com/VolkanCARBUGA/VintedClone/internal/prefs"
	"github.com/VolkanCARBUGA/VintedClone/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewProducts View = iota
	ViewFavorites
	ViewInbox
	ViewThread
)

func (v View) String() string {
	switch v {
	case ViewProducts:
		return "products"
	case ViewFavorites:
		return "favorites"
	case ViewInbox:
		return "inbox"
	case ViewThread:
		return "thread"
	default:
		return "unknown"
	}
}

// ParseView maps a preference value to a top-level view.
func ParseView(name string) View {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "favorites":
		return ViewFavorites
	case "inbox":
		return ViewInbox
	default:
		return ViewProducts
	}
}

// tabs are the views reachable with tab/shift+tab.
var tabs = []View{ViewProducts, ViewFavorites, ViewInbox}

const flashTTL = 5 * time.Second

// Options configures the UI.
type Options struct {
	Context   context.Context
	Catalog   *catalog.Catalog
	Messenger market.Messenger
	Inbox     *chat.Inbox
	Logger    *slog.Logger

	UserID   string
	Username string

	RefreshTick  time.Duration
	InboxPoll    time.Duration
	ThreadPoll   time.Duration
	ThemeName    string
	StartView    string
	PrefsPath    string
	LogPath      string
	InitialQuery market.ProductQuery
}

// flash is a transient status line message.
type flash struct {
	text string
	err  bool
	at   time.Time
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx         context.Context
	catalog     *catalog.Catalog
	messenger   market.Messenger
	inbox       *chat.Inbox
	logger      *slog.Logger
	userID      string
	username    string
	prefsPath   string
	logPath     string
	refreshTick time.Duration
	inboxPoll   time.Duration
	threadPoll  time.Duration

	// Pollers outlive copies of the model.
	polls *pollSet

	// UI state
	theme       Theme
	keys        keyMap
	help        help.Model
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool
	flash       flash
	now         time.Time

	// Data state
	products      state.Snapshot[market.Product]
	favorites     state.Snapshot[market.Product]
	conversations state.Snapshot[market.Conversation]
	messages      state.Snapshot[market.Message]

	// List state
	cursors map[View]int
	query   market.ProductQuery

	// Search
	searching bool
	search    textinput.Model

	// Thread state
	thread         *chat.Thread
	threadTitle    string
	threadPeer     string
	threadReturn   View
	threadViewport viewport.Model
	composer       textinput.Model
	sending        bool
	markingRead    bool
	markedVersion  uint64
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	refreshTick := opts.RefreshTick
	if refreshTick <= 0 {
		refreshTick = 500 * time.Millisecond
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Dracula"
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search listings"
	search.CharLimit = 120
	search.SetValue(opts.InitialQuery.Search)

	composer := textinput.New()
	composer.Prompt = "> "
	composer.Placeholder = "write a message"
	composer.CharLimit = 2000

	return Model{
		ctx:         ctx,
		catalog:     opts.Catalog,
		messenger:   opts.Messenger,
		inbox:       opts.Inbox,
		logger:      logger,
		userID:      opts.UserID,
		username:    opts.Username,
		prefsPath:   prefsPath,
		logPath:     opts.LogPath,
		refreshTick: refreshTick,
		inboxPoll:   opts.InboxPoll,
		threadPoll:  opts.ThreadPoll,
		polls:       &pollSet{},
		theme:       GetTheme(themeName),
		keys:        DefaultKeyMap(),
		help:        help.New(),
		currentView: ParseView(opts.StartView),
		cursors:     make(map[View]int),
		query:       opts.InitialQuery,
		search:      search,
		composer:    composer,
		now:         time.Now(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tickCmd(m.refreshTick),
		m.loadProductsCmd(),
		m.loadInboxCmd(),
	}
	if m.currentView == ViewFavorites {
		cmds = append(cmds, m.loadFavoritesCmd())
	}
	if m.currentView == ViewInbox {
		m.polls.startInbox(m.ctx, m.inbox, m.inboxPoll)
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.threadViewport = viewport.New(msg.Width, m.threadHeight())
		}
		m.ready = true
		m.help.Width = msg.Width
		m.resizeThread()
		return m, nil

	case tickMsg:
		return m.handleTick(time.Time(msg))

	case snapshotMsg:
		return m.applySnapshot(msg)

	case loadedMsg:
		return m.handleLoaded(msg)

	case favoriteMsg:
		return m.handleFavorite(msg)

	case reconciledMsg:
		return m.handleReconciled(msg)

	case sentMsg:
		return m.handleSent(msg)

	case markedReadMsg:
		m.markingRead = false
		if msg.err != nil {
			m.logger.Warn("mark read failed", "error", msg.err)
		}
		return m, m.snapshotCmd()
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if msg.String() == "ctrl+c" {
		m.polls.stopAll()
		return m, tea.Quit
	}

	// Text inputs take every key except their own controls.
	if m.searching {
		return m.handleSearchKey(msg)
	}
	if m.currentView == ViewThread {
		return m.handleThreadKey(msg)
	}

	switch msg.String() {
	case "e":
		m.polls.stopAll()
		return m, tea.Quit

	case "h", "?":
		m.showHelp = true
		return m, nil

	case "T":
		m.theme = GetTheme(NextTheme(m.theme.Name))
		if m.prefsPath != "" {
			name := m.theme.Name
			if err := prefs.Update(m.prefsPath, func(p *prefs.Prefs) { p.Theme = name }); err != nil {
				m.logger.Warn("save prefs failed", "error", err)
			}
		}
		return m, nil

	case "tab":
		return m.switchView(m.nextTab(1))

	case "shift+tab":
		return m.switchView(m.nextTab(-1))

	case "p":
		return m.switchView(ViewProducts)

	case "v":
		return m.switchView(ViewFavorites)

	case "i":
		return m.switchView(ViewInbox)

	case "r":
		return m, m.refreshCurrentCmd()

	case "j", "down":
		m.moveCursor(1)
		return m, nil

	case "k", "up":
		m.moveCursor(-1)
		return m, nil

	case "g", "home":
		m.cursors[m.currentView] = 0
		return m, nil

	case "G", "end":
		m.cursors[m.currentView] = maxInt(0, m.listLen()-1)
		return m, nil
	}

	switch m.currentView {
	case ViewProducts, ViewFavorites:
		return m.handleProductKey(msg)
	case ViewInbox:
		return m.handleInboxKey(msg)
	}

	return m, nil
}

// switchView changes the top-level view, starting or stopping the inbox
// poller so it only runs while the inbox is visible.
func (m Model) switchView(v View) (tea.Model, tea.Cmd) {
	if v == m.currentView {
		return m, nil
	}
	m.currentView = v

	var cmd tea.Cmd
	switch v {
	case ViewInbox:
		m.polls.startInbox(m.ctx, m.inbox, m.inboxPoll)
		cmd = m.loadInboxCmd()
	case ViewFavorites:
		m.polls.stopInbox()
		cmd = m.loadFavoritesCmd()
	default:
		m.polls.stopInbox()
	}
	return m, tea.Batch(cmd, m.snapshotCmd())
}

func (m Model) nextTab(step int) View {
	idx := 0
	for i, v := range tabs {
		if v == m.currentView {
			idx = i
		}
	}
	idx = (idx + step + len(tabs)) % len(tabs)
	return tabs[idx]
}

func (m *Model) moveCursor(delta int) {
	m.cursors[m.currentView] = clampCursor(m.cursors[m.currentView]+delta, m.listLen())
}

func (m Model) listLen() int {
	return m.lenOf(m.currentView)
}

// handleTick schedules a snapshot read and the next tick.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	m.now = now
	if !m.flash.at.IsZero() && now.Sub(m.flash.at) > flashTTL {
		m.flash = flash{}
	}
	return m, tea.Batch(m.snapshotCmd(), tickCmd(m.refreshTick))
}

// applySnapshot copies the latest collection snapshots into the model.
func (m Model) applySnapshot(msg snapshotMsg) (tea.Model, tea.Cmd) {
	m.products = msg.products
	m.favorites = msg.favorites
	m.conversations = msg.conversations

	for _, v := range tabs {
		m.cursors[v] = clampCursor(m.cursors[v], m.lenOf(v))
	}

	var cmd tea.Cmd
	if msg.thread != nil && msg.thread == m.thread {
		changed := msg.messages.Version != m.messages.Version || !m.messages.Loaded
		m.messages = msg.messages
		if changed {
			m.updateThreadViewport()
		}
		if !m.markingRead && m.messages.Version != m.markedVersion && hasUnreadFrom(m.messages.Items, m.userID) {
			m.markingRead = true
			m.markedVersion = m.messages.Version
			cmd = markReadCmd(m.ctx, m.thread)
		}
	}
	return m, cmd
}

func (m Model) lenOf(v View) int {
	switch v {
	case ViewProducts:
		return len(m.products.Items)
	case ViewFavorites:
		return len(m.favorites.Items)
	case ViewInbox:
		return len(m.conversations.Items)
	}
	return 0
}

func (m Model) handleLoaded(msg loadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.setError(msg.what, msg.err)
	}
	return m, m.snapshotCmd()
}

// setFlash shows an informational status line message.
func (m *Model) setFlash(text string) {
	m.flash = flash{text: text, at: time.Now()}
}

// setError shows a failure in the status line. A rejected session points the
// user at the login command.
func (m *Model) setError(what string, err error) {
	text := market.DisplayMessage(err)
	if market.IsUnauthorized(err) {
		text = "session expired, run `vinted login`"
	}
	if what != "" {
		text = what + ": " + text
	}
	m.flash = flash{text: text, err: true, at: time.Now()}
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")

	b.WriteString(m.renderContent())
	b.WriteString("\n")

	b.WriteString(m.renderFooter())

	return b.String()
}

// contentHeight is the number of rows between the bars.
func (m Model) contentHeight() int {
	return maxInt(1, m.height-4)
}

func (m Model) renderContent() string {
	switch m.currentView {
	case ViewProducts:
		return m.renderProducts(m.products, "No listings match. Press / to search or r to refresh.")
	case ViewFavorites:
		return m.renderProducts(m.favorites, "No favorites yet. Press f on a listing to save it.")
	case ViewInbox:
		return m.renderInbox()
	case ViewThread:
		return m.renderThread()
	}
	return ""
}

// Run starts the Bubble Tea program. Cancelling the context ends it cleanly.
func Run(opts Options) error {
	m := New(opts)
	defer m.polls.stopAll()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
