package ui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/VolkanCARBUGA/VintedClone/internal/chat"
	"github.com/VolkanCARBUGA/VintedClone/internal/market"
	"github.com/VolkanCARBUGA/VintedClone/internal/state"
)

// openThread switches to the conversation view and starts its poller. The
// inbox poller stays stopped while a thread covers it.
func (m Model) openThread(thread *chat.Thread, title, peer string) (tea.Model, tea.Cmd) {
	m.polls.stopInbox()

	m.thread = thread
	m.threadTitle = title
	m.threadPeer = peer
	m.threadReturn = m.currentView
	m.currentView = ViewThread
	m.messages = state.Snapshot[market.Message]{}
	m.sending = false
	m.markingRead = false
	m.markedVersion = 0
	m.composer.Reset()
	m.searching = false
	m.search.Blur()
	m.updateThreadViewport()

	m.polls.startThread(m.ctx, thread, m.threadPoll)

	cmds := []tea.Cmd{m.composer.Focus(), textinput.Blink}
	if thread.ConversationID() != "" {
		cmds = append(cmds, loadThreadCmd(m.ctx, thread))
	}
	return m, tea.Batch(cmds...)
}

// closeThread stops the thread poller and returns to the previous view.
func (m Model) closeThread() (tea.Model, tea.Cmd) {
	m.polls.stopThread()
	created := m.thread != nil && m.thread.ConversationID() != ""

	m.thread = nil
	m.messages = state.Snapshot[market.Message]{}
	m.composer.Blur()
	m.currentView = m.threadReturn

	var cmds []tea.Cmd
	if m.currentView == ViewInbox {
		m.polls.startInbox(m.ctx, m.inbox, m.inboxPoll)
	}
	if created {
		cmds = append(cmds, m.loadInboxCmd())
	}
	cmds = append(cmds, m.snapshotCmd())
	return m, tea.Batch(cmds...)
}

// handleThreadKey routes keys while the composer has focus.
func (m Model) handleThreadKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m.closeThread()

	case "enter":
		return m.send()

	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		var cmd tea.Cmd
		m.threadViewport, cmd = m.threadViewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	return m, cmd
}

// send hands the composer text to the thread. The text stays in the
// composer until the send succeeds.
func (m Model) send() (tea.Model, tea.Cmd) {
	if m.thread == nil {
		return m, nil
	}
	if m.sending {
		m.setFlash("still sending")
		return m, nil
	}
	content := m.composer.Value()
	if strings.TrimSpace(content) == "" {
		m.setFlash("message is empty")
		return m, nil
	}
	m.sending = true
	return m, sendCmd(m.ctx, m.thread, content)
}

func (m Model) handleSent(msg sentMsg) (tea.Model, tea.Cmd) {
	if msg.thread != m.thread {
		return m, nil
	}
	m.sending = false

	switch {
	case errors.Is(msg.err, chat.ErrSending):
		m.setFlash("still sending")
		return m, nil
	case errors.Is(msg.err, chat.ErrEmptyMessage):
		m.setFlash("message is empty")
		return m, nil
	case msg.err != nil:
		m.setError("message not sent", msg.err)
		return m, nil
	}

	m.composer.Reset()
	return m, tea.Batch(m.snapshotCmd(), m.loadInboxCmd())
}

func (m Model) threadHeight() int {
	return maxInt(1, m.contentHeight()-3)
}

func (m *Model) resizeThread() {
	m.threadViewport.Width = maxInt(20, m.width)
	m.threadViewport.Height = m.threadHeight()
	m.composer.Width = maxInt(10, m.width-4)
	m.updateThreadViewport()
}

// updateThreadViewport rebuilds the message log and scrolls to the newest
// message.
func (m *Model) updateThreadViewport() {
	if !m.ready {
		return
	}
	m.threadViewport.SetContent(m.threadContent())
	m.threadViewport.GotoBottom()
}

func (m Model) threadContent() string {
	styles := m.theme.Styles()
	width := maxInt(20, m.width)

	if m.thread == nil {
		return ""
	}
	if m.thread.ConversationID() == "" {
		return styles.MutedText.Render("Say hello. Your first message starts the conversation.")
	}
	if !m.messages.Loaded {
		if m.messages.LastError != nil {
			return styles.DangerText.Render("Could not load messages: " + market.DisplayMessage(m.messages.LastError))
		}
		return styles.MutedText.Render("Loading messages...")
	}
	if len(m.messages.Items) == 0 {
		return styles.MutedText.Render("No messages yet.")
	}

	body := lipgloss.NewStyle().Width(maxInt(10, width-4)).PaddingLeft(2)
	var blocks []string
	for _, msg := range m.messages.Items {
		who, style := "@"+m.threadPeer, styles.Theirs
		if m.userID != "" && msg.SenderID == m.userID {
			who, style = "you", styles.Mine
		}
		stamp := ""
		if ts := msg.ParsedTime(); !ts.IsZero() {
			stamp = ts.Local().Format("Jan 2 15:04")
		}
		head := style.Bold(true).Render(who) + " " + styles.FaintText.Render(stamp)
		blocks = append(blocks, head+"\n"+body.Render(style.Render(msg.Content)))
	}
	return strings.Join(blocks, "\n")
}

// hasUnreadFrom reports whether any message not sent by self is unread.
func hasUnreadFrom(items []market.Message, self string) bool {
	for _, msg := range items {
		if !msg.IsRead && (self == "" || msg.SenderID != self) {
			return true
		}
	}
	return false
}

func (m Model) renderThread() string {
	styles := m.theme.Styles()
	width := maxInt(20, m.width)

	status := ""
	switch {
	case m.sending:
		status = styles.WarningText.Render("sending...")
	case m.thread != nil && m.thread.ConversationID() == "":
		status = styles.MutedText.Render("new conversation")
	case m.messages.IsOffline():
		status = styles.DangerText.Render("offline")
	}

	title := styles.AccentText.Bold(true).Render(truncate(m.threadTitle, width-20))
	if status != "" {
		title += "  " + status
	}

	lines := []string{
		title,
		m.threadViewport.View(),
		styles.FaintText.Render(strings.Repeat("─", width)),
		m.composer.View(),
	}
	return fitLines(strings.Split(strings.Join(lines, "\n"), "\n"), m.contentHeight())
}
