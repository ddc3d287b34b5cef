package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/VolkanCARBUGA/VintedClone/internal/market"
)

// renderHeader renders the status bar: account, counts and sync state.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	bg := lipgloss.Color(m.theme.Surface)
	on := func(s lipgloss.Style) lipgloss.Style { return s.Background(bg) }
	sep := on(lipgloss.NewStyle()).Render("  ")

	parts := []string{on(styles.Logo).Render("vinted")}
	if m.username != "" {
		parts = append(parts, on(styles.MutedText).Render("@"+m.username))
	}

	parts = append(parts,
		on(styles.FaintText).Render("listings ")+on(styles.Text).Render(fmt.Sprint(len(m.products.Items))),
		on(styles.FaintText).Render("favorites ")+on(styles.Text).Render(fmt.Sprint(len(m.favorites.Items))),
	)
	if unread := m.unreadTotal(); unread > 0 {
		parts = append(parts, on(styles.AccentText.Bold(true)).Render(fmt.Sprintf("%d unread", unread)))
	}

	parts = append(parts, m.syncStatus(styles, on))

	return styles.Header.Width(m.width).Render(strings.Join(parts, sep))
}

// syncStatus describes the freshness of the data behind the current view.
func (m Model) syncStatus(styles Styles, on func(lipgloss.Style) lipgloss.Style) string {
	var lastErr error
	var offline, loaded bool
	var updatedAge string

	switch m.currentView {
	case ViewInbox:
		lastErr, offline, loaded = m.conversations.LastError, m.conversations.IsOffline(), m.conversations.Loaded
		updatedAge = formatAge(m.conversations.LastUpdated, m.now)
	case ViewThread:
		lastErr, offline, loaded = m.messages.LastError, m.messages.IsOffline(), m.messages.Loaded
		updatedAge = formatAge(m.messages.LastUpdated, m.now)
	case ViewFavorites:
		lastErr, offline, loaded = m.favorites.LastError, m.favorites.IsOffline(), m.favorites.Loaded
		updatedAge = formatAge(m.favorites.LastUpdated, m.now)
	default:
		lastErr, offline, loaded = m.products.LastError, m.products.IsOffline(), m.products.Loaded
		updatedAge = formatAge(m.products.LastUpdated, m.now)
	}

	switch {
	case market.IsUnauthorized(lastErr):
		return on(styles.DangerText).Render("signed out, run `vinted login`")
	case offline:
		return on(styles.DangerText).Render("offline") + on(styles.WarningText).Render(" retrying...")
	case lastErr != nil:
		return on(styles.WarningText).Render("sync failed")
	case !loaded:
		return on(styles.WarningText).Render("connecting...")
	default:
		return on(styles.FaintText).Render("updated " + updatedAge)
	}
}

// renderCommandBar renders the view tabs and the active search query.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles()

	names := map[View]string{
		ViewProducts:  "Products",
		ViewFavorites: "Favorites",
		ViewInbox:     "Inbox",
	}
	active := m.currentView
	if active == ViewThread {
		active = m.threadReturn
	}

	var parts []string
	for _, v := range tabs {
		label := names[v]
		if v == ViewInbox {
			if unread := m.unreadTotal(); unread > 0 {
				label = fmt.Sprintf("%s (%d)", label, unread)
			}
		}
		if v == active {
			parts = append(parts, styles.TabOn.Render(label))
		} else {
			parts = append(parts, styles.Tab.Render(label))
		}
	}
	if m.currentView == ViewThread {
		parts = append(parts, styles.AccentText.Render(" › conversation"))
	}
	if q := strings.TrimSpace(m.query.Search); q != "" && !m.searching {
		parts = append(parts, styles.MutedText.Render(fmt.Sprintf("  search: %q", q)))
	}

	return lipgloss.NewStyle().Width(m.width).Render(strings.Join(parts, " "))
}

// renderFooter shows the latest flash message, or the short help.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()

	if m.flash.text != "" {
		style := styles.SuccessText
		if m.flash.err {
			style = styles.DangerText
		}
		return styles.Footer.Width(m.width).Render(style.Render(m.flash.text))
	}

	h := m.help
	h.Styles.ShortKey = styles.WarningText
	h.Styles.ShortDesc = styles.MutedText
	h.Styles.ShortSeparator = styles.FaintText
	return styles.Footer.Width(m.width).Render(h.ShortHelpView(m.footerBindings()))
}
