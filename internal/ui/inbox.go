package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/VolkanCARBUGA/VintedClone/internal/chat"
	"github.com/VolkanCARBUGA/VintedClone/internal/market"
)

const (
	peerWidth    = 14
	productWidth = 24
)

func (m Model) handleInboxKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "m":
		c, ok := m.selectedConversation()
		if !ok || m.messenger == nil {
			return m, nil
		}
		title := fmt.Sprintf("@%s · %s", c.User.Username, c.Product.Title)
		return m.openThread(chat.OpenThread(m.messenger, c.ID, m.chatOptions()...), title, c.User.Username)
	}
	return m, nil
}

func (m Model) selectedConversation() (market.Conversation, bool) {
	items := m.conversations.Items
	if len(items) == 0 {
		return market.Conversation{}, false
	}
	return items[clampCursor(m.cursors[ViewInbox], len(items))], true
}

// unreadTotal sums unread counts over the inbox.
func (m Model) unreadTotal() int {
	total := 0
	for _, c := range m.conversations.Items {
		total += c.UnreadCount
	}
	return total
}

// renderInbox lists conversations in server order.
func (m Model) renderInbox() string {
	styles := m.theme.Styles()
	height := m.contentHeight()
	width := maxInt(40, m.width)
	snap := m.conversations

	var lines []string
	switch {
	case !snap.Loaded && snap.LastError != nil:
		lines = append(lines, styles.DangerText.Render("Could not load conversations: "+market.DisplayMessage(snap.LastError)))
	case !snap.Loaded:
		lines = append(lines, styles.MutedText.Render("Loading conversations..."))
	case len(snap.Items) == 0:
		lines = append(lines, styles.MutedText.Render("No conversations yet. Press m on a listing to message the seller."))
	default:
		cursor := clampCursor(m.cursors[ViewInbox], len(snap.Items))
		start, end := visibleWindow(cursor, len(snap.Items), height)
		for i := start; i < end; i++ {
			lines = append(lines, m.renderConversationRow(styles, snap.Items[i], width, i == cursor))
		}
	}

	return fitLines(lines, height)
}

func (m Model) renderConversationRow(styles Styles, c market.Conversation, width int, selected bool) string {
	previewWidth := maxInt(10, width-2-peerWidth-productWidth-ageWidth-6)

	marker := " "
	if c.UnreadCount > 0 {
		marker = "●"
	}

	preview := singleLine(c.LastMessage.Content)
	if m.userID != "" && c.LastMessage.SenderID == m.userID {
		preview = "you: " + preview
	}
	if c.UnreadCount > 1 {
		preview = fmt.Sprintf("(%d) %s", c.UnreadCount, preview)
	}

	peer := padRight(truncate("@"+c.User.Username, peerWidth), peerWidth)
	product := padRight(truncate(c.Product.Title, productWidth), productWidth)
	previewText := padRight(truncate(preview, previewWidth), previewWidth)
	age := padLeft(formatAge(market.Message{Timestamp: c.LastMessage.Timestamp}.ParsedTime(), m.now), ageWidth)

	if selected {
		return styles.Selected.Width(width).Render(strings.Join([]string{marker, peer, product, previewText, age}, " "))
	}

	textStyle := styles.MutedText
	if c.UnreadCount > 0 {
		textStyle = styles.Text.Bold(true)
	}
	return strings.Join([]string{
		styles.AccentText.Render(marker),
		textStyle.Render(peer),
		styles.InfoText.Render(product),
		textStyle.Render(previewText),
		styles.FaintText.Render(age),
	}, " ")
}
