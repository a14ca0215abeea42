package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"

	"bizchat/internal/chat"
	"bizchat/internal/types"
)

func (m *Model) sidebarWidth() int {
	w := m.width / 3
	if w < minSidebarWidth {
		w = minSidebarWidth
	}
	if w > maxSidebarWidth {
		w = maxSidebarWidth
	}
	if w >= m.width {
		w = m.width / 2
	}
	return w
}

func (m *Model) contentWidth() int {
	w := m.width - m.sidebarWidth() - 3
	if w < 20 {
		w = 20
	}
	return w
}

func (m *Model) layout() {
	h := m.height - 5
	if h < minContentHeight {
		h = minContentHeight
	}
	m.viewport.Width = m.contentWidth()
	m.viewport.Height = h
	m.composer.Width = m.contentWidth() - 2
	m.refreshMessages()
}

// refreshMessages re-renders the transcript into the viewport. The store keeps
// messages newest first; the transcript reads top to bottom, so render the
// slice reversed and pin the viewport to the bottom.
func (m *Model) refreshMessages() {
	msgs := m.conversation.Store().Messages()
	width := m.contentWidth()

	var b strings.Builder
	for i := len(msgs) - 1; i >= 0; i-- {
		b.WriteString(m.renderMessage(msgs[i], width))
		b.WriteString("\n")
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m *Model) renderMessage(msg types.Message, width int) string {
	bubbleWidth := width * 2 / 3
	if bubbleWidth < 16 {
		bubbleWidth = 16
	}
	body := wordwrap.String(msg.Body, bubbleWidth-2)
	stamp := timestampStyle.Render(msg.CreatedAt.Local().Format("Jan 2 15:04"))

	if msg.SenderUserID == m.viewerID {
		bubble := ownBubbleStyle.Render(body)
		block := lipgloss.JoinVertical(lipgloss.Right, bubble, stamp)
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, block)
	}
	bubble := theirBubbleStyle.Render(body)
	return lipgloss.JoinVertical(lipgloss.Left, bubble, stamp)
}

func (m *Model) View() string {
	if m.width == 0 {
		return "loading..."
	}
	sidebar := m.renderSidebar()
	content := m.renderContent()
	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, content)
	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderFooter())
}

func (m *Model) renderSidebar() string {
	width := m.sidebarWidth()
	innerWidth := width - 2

	var b strings.Builder
	b.WriteString(sidebarTitleStyle.Render("Conversations"))
	b.WriteString("\n")

	switch {
	case m.indexErr != nil:
		b.WriteString(errorStyle.Render("index unavailable"))
		b.WriteString("\n")
	case m.indexPending && len(m.entries) == 0:
		b.WriteString(m.loader.View() + " loading")
		b.WriteString("\n")
	case len(m.entries) == 0:
		b.WriteString(previewStyle.Render("no conversations yet"))
		b.WriteString("\n")
	}

	for i, entry := range m.entries {
		name := m.counterpartName(entry)
		if m.entryUnread(entry) {
			name = "● " + name
		}
		line := ansi.Truncate(name, innerWidth, "…")
		switch {
		case i == m.selected:
			line = entrySelectedStyle.Render(padRight(line, innerWidth))
		case m.entryUnread(entry):
			line = entryUnreadStyle.Render(line)
		default:
			line = entryStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
		preview := fmt.Sprintf("  %s · %s", formatRelative(entry.UpdatedAt), entry.Preview)
		b.WriteString(previewStyle.Render(ansi.Truncate(preview, innerWidth, "…")))
		b.WriteString("\n")
	}

	height := m.viewport.Height + 2
	return sidebarStyle.Width(width).Height(height).Render(b.String())
}

func (m *Model) renderContent() string {
	width := m.contentWidth()

	switch m.conversation.Phase() {
	case chat.PhaseIdle:
		idle := previewStyle.Render("Select a conversation and press enter.")
		return lipgloss.Place(width, m.viewport.Height+2, lipgloss.Center, lipgloss.Center, idle)
	case chat.PhaseLoading:
		loading := m.loader.View() + " loading conversation"
		return lipgloss.Place(width, m.viewport.Height+2, lipgloss.Center, lipgloss.Center, loading)
	case chat.PhaseFailed:
		failed := errorStyle.Render("Something went wrong!")
		return lipgloss.Place(width, m.viewport.Height+2, lipgloss.Center, lipgloss.Center, failed)
	}

	header := headerStyle.Width(width).Render(m.conversationTitle())
	return lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View(), m.composer.View())
}

func (m *Model) renderFooter() string {
	help := "enter open · tab compose · r refresh · ctrl+y copy · q quit"
	if m.focus == focusComposer {
		help = "enter send · esc back · ctrl+y copy · ctrl+c quit"
	}
	footer := helpStyle.Render(help)
	if m.status != "" {
		footer = statusStyle.Render(m.status) + "  " + footer
	}
	return footer
}

func (m *Model) conversationTitle() string {
	partnerID := m.conversation.PartnerID()
	if entry := chat.ResolveCounterpart(m.entries, m.viewerID, partnerID); entry != nil {
		return chat.CounterpartParty(*entry, partnerID).DisplayName()
	}
	return fmt.Sprintf("User %d", partnerID)
}

func (m *Model) counterpartName(entry types.ChatHistoryEntry) string {
	return chat.CounterpartParty(entry, m.entryPartnerID(entry)).DisplayName()
}

func padRight(s string, width int) string {
	gap := width - runewidth.StringWidth(ansi.Strip(s))
	if gap <= 0 {
		return s
	}
	return s + strings.Repeat(" ", gap)
}

func formatRelative(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return t.Local().Format("Jan 2")
	}
}
