package ui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/VolkanCARBUGA/VintedClone/internal/chat"
	"github.com/VolkanCARBUGA/VintedClone/internal/market"
	"github.com/VolkanCARBUGA/VintedClone/internal/optimistic"
	"github.com/VolkanCARBUGA/VintedClone/internal/state"
)

const (
	priceWidth  = 12
	statusWidth = 10
	sellerWidth = 14
	ageWidth    = 5
	detailRows  = 4
)

// handleProductKey handles keys specific to the listing views.
func (m Model) handleProductKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "f":
		return m.toggleFavorite()

	case "m", "enter":
		return m.messageSeller()

	case "/":
		if m.currentView != ViewProducts {
			return m, nil
		}
		m.searching = true
		m.search.SetValue(m.query.Search)
		m.search.CursorEnd()
		return m, m.search.Focus()
	}
	return m, nil
}

// handleSearchKey edits the search query until enter or esc.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.search.Blur()
		m.search.SetValue(m.query.Search)
		return m, nil

	case "enter":
		m.searching = false
		m.search.Blur()
		m.query.Search = strings.TrimSpace(m.search.Value())
		m.query.Page = 0
		m.cursors[ViewProducts] = 0
		return m, m.loadProductsCmd()
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m Model) productList() state.Snapshot[market.Product] {
	if m.currentView == ViewFavorites {
		return m.favorites
	}
	return m.products
}

func (m Model) selectedProduct() (market.Product, bool) {
	items := m.productList().Items
	if len(items) == 0 {
		return market.Product{}, false
	}
	return items[clampCursor(m.cursors[m.currentView], len(items))], true
}

// toggleFavorite flips the flag locally right away and commits it in the
// background. A toggle that is still in flight is refused, not queued. A
// product left Dirty by an earlier failure is refetched off the event loop
// before the new toggle is applied.
func (m Model) toggleFavorite() (tea.Model, tea.Cmd) {
	p, ok := m.selectedProduct()
	if !ok || m.catalog == nil {
		return m, nil
	}

	switch m.catalog.Phase(p.ID) {
	case optimistic.Pending, optimistic.Reconciling:
		m.setFlash("still saving " + truncate(p.Title, 40))
		return m, nil
	case optimistic.Dirty:
		m.setFlash("refreshing " + truncate(p.Title, 40))
		return m, reconcileFavoriteCmd(m.ctx, m.catalog, p.ID)
	}
	return m.beginToggle(p)
}

func (m Model) beginToggle(p market.Product) (tea.Model, tea.Cmd) {
	inflight, err := m.catalog.BeginToggleFavorite(m.ctx, p.ID)
	switch {
	case errors.Is(err, optimistic.ErrBusy):
		m.setFlash("still saving " + truncate(p.Title, 40))
		return m, nil
	case err != nil:
		m.setError("favorite", err)
		return m, m.snapshotCmd()
	}

	return m, tea.Batch(m.snapshotCmd(), commitFavoriteCmd(m.ctx, inflight, p))
}

// handleReconciled retries the toggle that found its product Dirty.
func (m Model) handleReconciled(msg reconciledMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.setError("favorite not saved", msg.err)
		return m, m.snapshotCmd()
	}
	p, ok := m.catalog.Product(msg.productID)
	if !ok {
		m.setFlash("listing is no longer available")
		return m, m.snapshotCmd()
	}
	if m.catalog.Phase(p.ID) != optimistic.Clean {
		return m, m.snapshotCmd()
	}
	return m.beginToggle(p)
}

func (m Model) handleFavorite(msg favoriteMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.setError("favorite not saved", msg.err)
		if msg.outcome == optimistic.Unreconciled {
			m.logger.Warn("favorite left unreconciled", "product", msg.productID, "error", msg.err)
		}
		return m, m.snapshotCmd()
	}

	title := truncate(msg.title, 40)
	if msg.favorite {
		m.setFlash("saved " + title)
		return m, m.snapshotCmd()
	}
	m.setFlash("removed " + title)
	if m.currentView == ViewFavorites {
		return m, tea.Batch(m.snapshotCmd(), m.loadFavoritesCmd())
	}
	return m, m.snapshotCmd()
}

// messageSeller opens the thread with the seller of the selected listing,
// reusing an existing conversation about the same product.
func (m Model) messageSeller() (tea.Model, tea.Cmd) {
	p, ok := m.selectedProduct()
	if !ok || m.messenger == nil {
		return m, nil
	}
	if p.Seller.ID == "" {
		m.setFlash("listing has no seller")
		return m, nil
	}
	if p.Seller.ID == m.userID {
		m.setFlash("this is your listing")
		return m, nil
	}

	peer := p.Seller.Username
	title := fmt.Sprintf("@%s · %s", peer, p.Title)
	opts := m.chatOptions()

	for _, c := range m.conversations.Items {
		if c.Product.ID == p.ID && c.User.ID == p.Seller.ID {
			return m.openThread(chat.OpenThread(m.messenger, c.ID, opts...), title, peer)
		}
	}
	return m.openThread(chat.NewThread(m.messenger, p.Seller.ID, p.ID, opts...), title, peer)
}

func (m Model) chatOptions() []chat.Option {
	return []chat.Option{chat.WithLogger(m.logger), chat.WithSelf(m.userID)}
}

// renderProducts renders a listing table with a detail panel for the
// selected row.
func (m Model) renderProducts(snap state.Snapshot[market.Product], empty string) string {
	styles := m.theme.Styles()
	height := m.contentHeight()
	width := maxInt(40, m.width)

	if m.searching {
		height--
	}

	var lines []string
	if m.searching {
		lines = append(lines, m.search.View())
	}

	switch {
	case !snap.Loaded && snap.LastError != nil:
		lines = append(lines, styles.DangerText.Render("Could not load: "+market.DisplayMessage(snap.LastError)))
	case !snap.Loaded:
		lines = append(lines, styles.MutedText.Render("Loading listings..."))
	case len(snap.Items) == 0:
		lines = append(lines, styles.MutedText.Render(empty))
	default:
		listHeight := height
		showDetail := height >= 12
		if showDetail {
			listHeight = height - detailRows - 1
		}
		cursor := clampCursor(m.cursors[m.currentView], len(snap.Items))
		start, end := visibleWindow(cursor, len(snap.Items), listHeight)
		for i := start; i < end; i++ {
			lines = append(lines, m.renderProductRow(styles, snap.Items[i], width, i == cursor))
		}
		for i := end - start; i < listHeight; i++ {
			lines = append(lines, "")
		}
		if showDetail {
			lines = append(lines, styles.FaintText.Render(strings.Repeat("─", width)))
			lines = append(lines, m.renderProductDetail(styles, snap.Items[cursor], width)...)
		}
	}

	return fitLines(lines, m.contentHeight())
}

func (m Model) renderProductRow(styles Styles, p market.Product, width int, selected bool) string {
	titleWidth := maxInt(10, width-2-priceWidth-statusWidth-sellerWidth-ageWidth-5)

	marker := " "
	markerStyle := styles.DangerText
	if p.IsFavorite {
		marker = "♥"
	}
	if m.catalog != nil {
		switch m.catalog.Phase(p.ID) {
		case optimistic.Pending:
			marker = "…"
			markerStyle = styles.WarningText
		case optimistic.Dirty:
			marker = "!"
			markerStyle = styles.WarningText
		}
	}

	status := p.Status
	if status == "" {
		status = "active"
	}

	title := padRight(truncate(singleLine(p.Title), titleWidth), titleWidth)
	price := padLeft(formatPrice(p.Price), priceWidth)
	badge := padRight(truncate(status, statusWidth-2), statusWidth-2)
	seller := padRight(truncate("@"+p.Seller.Username, sellerWidth), sellerWidth)
	age := padLeft(formatAge(p.ParsedCreatedAt(), m.now), ageWidth)

	if selected {
		row := strings.Join([]string{marker, title, price, " " + badge + " ", seller, age}, " ")
		return styles.Selected.Width(width).Render(row)
	}
	return strings.Join([]string{
		markerStyle.Render(marker),
		styles.Text.Render(title),
		styles.AccentText.Render(price),
		styles.StatusStyle(status).Render(badge),
		styles.MutedText.Render(seller),
		styles.FaintText.Render(age),
	}, " ")
}

func (m Model) renderProductDetail(styles Styles, p market.Product, width int) []string {
	var facts []string
	for _, v := range []string{p.Brand, p.Size, p.Condition, p.Category} {
		if strings.TrimSpace(v) != "" {
			facts = append(facts, v)
		}
	}

	fav := styles.MutedText.Render("f to favorite")
	if p.IsFavorite {
		fav = styles.DangerText.Render("♥ favorite")
	}

	return []string{
		styles.Text.Bold(true).Render(truncate(p.Title, width-20)) + "  " + fav,
		styles.AccentText.Render(formatPrice(p.Price)) + "  " + styles.MutedText.Render(strings.Join(facts, " · ")),
		styles.Text.Render(truncate(singleLine(p.Description), width)),
		styles.FaintText.Render(fmt.Sprintf("sold by @%s", p.Seller.Username)) + "  " + styles.MutedText.Render("m to message"),
	}
}

// fitLines pads or cuts lines to exactly height rows.
func fitLines(lines []string, height int) string {
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
