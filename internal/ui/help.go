package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// footerBindings are the short help entries for the current view.
func (m Model) footerBindings() []key.Binding {
	switch {
	case m.searching:
		return []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "Search")),
			key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "Cancel")),
		}
	case m.currentView == ViewThread:
		return []key.Binding{m.keys.Send, m.keys.Back,
			key.NewBinding(key.WithKeys("pgup", "pgdown"), key.WithHelp("pgup/pgdn", "Scroll")),
		}
	case m.currentView == ViewInbox:
		return []key.Binding{m.keys.Tab, m.keys.Open, m.keys.Refresh, m.keys.Help, m.keys.Quit}
	default:
		return m.keys.ShortHelp()
	}
}

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	h := m.help
	h.Styles.FullKey = styles.WarningText
	h.Styles.FullDesc = styles.Text
	h.Styles.FullSeparator = styles.FaintText

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")
	b.WriteString(h.FullHelpView(m.keys.FullHelp()))
	b.WriteString("\n\n")
	b.WriteString(styles.MutedText.Render("Theme: " + m.theme.Name))
	if m.logPath != "" {
		b.WriteString("\n")
		b.WriteString(styles.FaintText.Render("Log: " + m.logPath))
	}
	b.WriteString("\n\n")
	b.WriteString(styles.FaintText.Render("Press any key to close"))

	box := styles.Panel.BorderForeground(lipgloss.Color(m.theme.BorderFocus)).Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
