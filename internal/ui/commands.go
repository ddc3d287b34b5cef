package ui

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/VolkanCARBUGA/VintedClone/internal/catalog"
	"github.com/VolkanCARBUGA/VintedClone/internal/chat"
	"github.com/VolkanCARBUGA/VintedClone/internal/market"
	"github.com/VolkanCARBUGA/VintedClone/internal/optimistic"
	"github.com/VolkanCARBUGA/VintedClone/internal/poll"
	"github.com/VolkanCARBUGA/VintedClone/internal/state"
)

type tickMsg time.Time

// snapshotMsg carries copies of every collection the views draw from.
type snapshotMsg struct {
	products      state.Snapshot[market.Product]
	favorites     state.Snapshot[market.Product]
	conversations state.Snapshot[market.Conversation]
	thread        *chat.Thread
	messages      state.Snapshot[market.Message]
}

// loadedMsg reports the end of an explicit refresh.
type loadedMsg struct {
	what string
	err  error
}

// favoriteMsg reports the settled outcome of a favorite toggle.
type favoriteMsg struct {
	productID string
	title     string
	favorite  bool
	outcome   optimistic.Outcome
	err       error
}

// reconciledMsg reports the refetch of a product whose last toggle was left
// unreconciled.
type reconciledMsg struct {
	productID string
	err       error
}

type sentMsg struct {
	thread *chat.Thread
	err    error
}

type markedReadMsg struct {
	err error
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) snapshotCmd() tea.Cmd {
	cat, inbox, thread := m.catalog, m.inbox, m.thread
	return func() tea.Msg {
		var msg snapshotMsg
		if cat != nil {
			msg.products = cat.Products()
			msg.favorites = cat.FavoriteList()
		}
		if inbox != nil {
			msg.conversations = inbox.Snapshot()
		}
		if thread != nil {
			msg.thread = thread
			msg.messages = thread.Messages()
		}
		return msg
	}
}

func (m Model) loadProductsCmd() tea.Cmd {
	if m.catalog == nil {
		return nil
	}
	ctx, cat, query := m.ctx, m.catalog, m.query
	return func() tea.Msg {
		return loadedMsg{what: "listings", err: cat.Refresh(ctx, query)}
	}
}

func (m Model) loadFavoritesCmd() tea.Cmd {
	if m.catalog == nil {
		return nil
	}
	ctx, cat := m.ctx, m.catalog
	return func() tea.Msg {
		return loadedMsg{what: "favorites", err: cat.Favorites(ctx)}
	}
}

func (m Model) loadInboxCmd() tea.Cmd {
	if m.inbox == nil {
		return nil
	}
	ctx, inbox := m.ctx, m.inbox
	return func() tea.Msg {
		return loadedMsg{what: "conversations", err: inbox.Refresh(ctx)}
	}
}

func loadThreadCmd(ctx context.Context, thread *chat.Thread) tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{what: "messages", err: thread.Refresh(ctx)}
	}
}

func (m Model) refreshCurrentCmd() tea.Cmd {
	switch m.currentView {
	case ViewProducts:
		return m.loadProductsCmd()
	case ViewFavorites:
		return m.loadFavoritesCmd()
	case ViewInbox:
		return m.loadInboxCmd()
	case ViewThread:
		if m.thread != nil {
			return loadThreadCmd(m.ctx, m.thread)
		}
	}
	return nil
}

// commitFavoriteCmd runs the remote half of a toggle whose local half has
// already been applied.
func commitFavoriteCmd(ctx context.Context, inflight *optimistic.Inflight, p market.Product) tea.Cmd {
	return func() tea.Msg {
		outcome, err := inflight.Commit(ctx)
		return favoriteMsg{
			productID: p.ID,
			title:     p.Title,
			favorite:  !p.IsFavorite,
			outcome:   outcome,
			err:       err,
		}
	}
}

func reconcileFavoriteCmd(ctx context.Context, cat *catalog.Catalog, productID string) tea.Cmd {
	return func() tea.Msg {
		return reconciledMsg{productID: productID, err: cat.ReconcileFavorite(ctx, productID)}
	}
}

func sendCmd(ctx context.Context, thread *chat.Thread, content string) tea.Cmd {
	return func() tea.Msg {
		return sentMsg{thread: thread, err: thread.Send(ctx, content)}
	}
}

func markReadCmd(ctx context.Context, thread *chat.Thread) tea.Cmd {
	return func() tea.Msg {
		return markedReadMsg{err: thread.MarkRead(ctx)}
	}
}

// pollSet tracks the pollers bound to visible screens.
type pollSet struct {
	mu     sync.Mutex
	inbox  *poll.Handle
	thread *poll.Handle
}

func (p *pollSet) startInbox(ctx context.Context, inbox *chat.Inbox, interval time.Duration) {
	if inbox == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.inbox != nil && !p.inbox.Stopped() {
		return
	}
	p.inbox = inbox.StartPolling(ctx, interval)
}

func (p *pollSet) stopInbox() {
	p.mu.Lock()
	h := p.inbox
	p.inbox = nil
	p.mu.Unlock()
	h.Stop()
}

func (p *pollSet) startThread(ctx context.Context, thread *chat.Thread, interval time.Duration) {
	p.mu.Lock()
	old := p.thread
	p.thread = thread.StartPolling(ctx, interval)
	p.mu.Unlock()
	old.Stop()
}

func (p *pollSet) stopThread() {
	p.mu.Lock()
	h := p.thread
	p.thread = nil
	p.mu.Unlock()
	h.Stop()
}

func (p *pollSet) stopAll() {
	p.stopInbox()
	p.stopThread()
}

// running reports which pollers are active.
func (p *pollSet) running() (inbox, thread bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inbox != nil && !p.inbox.Stopped(), p.thread != nil && !p.thread.Stopped()
}
