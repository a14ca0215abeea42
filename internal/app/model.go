package app

import (
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"bizchat/internal/chat"
	"bizchat/internal/client"
	"bizchat/internal/logging"
	"bizchat/internal/store"
	"bizchat/internal/types"
)

const (
	maxEventsPerTick = 64
	tickInterval     = 100 * time.Millisecond
	minSidebarWidth  = 24
	maxSidebarWidth  = 40
	minContentHeight = 6
)

type focusArea int

const (
	focusSidebar focusArea = iota
	focusComposer
)

type Model struct {
	api       ChatAPI
	appState  store.AppStateStore
	readState store.ReadStateStore
	log       logging.Logger

	viewerID int64

	entries      []types.ChatHistoryEntry
	indexErr     error
	indexPending bool

	conversation *chat.ConversationController
	pump         *EventPump
	lastRead     map[string]int64

	viewport viewport.Model
	composer textinput.Model
	loader   spinner.Model
	focus    focusArea
	selected int
	width    int
	height   int
	status   string
}

type Options struct {
	AppState  store.AppStateStore
	ReadState store.ReadStateStore
	Logger    logging.Logger
}

func NewModel(api ChatAPI, viewerID int64, opts Options) Model {
	vp := viewport.New(minSidebarWidth, minContentHeight)

	composer := textinput.New()
	composer.Placeholder = "Type a message"
	composer.CharLimit = 2000

	loader := spinner.New()
	loader.Spinner = spinner.Line

	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}

	return Model{
		api:          api,
		appState:     opts.AppState,
		readState:    opts.ReadState,
		log:          log,
		viewerID:     viewerID,
		indexPending: true,
		conversation: chat.NewConversationController(viewerID),
		pump:         NewEventPump(maxEventsPerTick),
		lastRead:     map[string]int64{},
		viewport:     vp,
		composer:     composer,
		loader:       loader,
	}
}

func Run(api ChatAPI, viewerID int64, opts Options) error {
	model := NewModel(api, viewerID, opts)
	p := tea.NewProgram(&model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		fetchChatIndexCmd(m.api, m.viewerID),
		tickCmd(),
		m.loader.Tick,
	)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)

	case chatIndexMsg:
		m.indexPending = false
		if msg.err != nil {
			m.indexErr = msg.err
			m.log.Warn("conversation index fetch failed", logging.F("error", msg.err))
			return m, nil
		}
		m.indexErr = nil
		m.entries = msg.entries
		if m.selected >= len(m.entries) {
			m.selected = 0
		}
		return m, loadReadStateCmd(m.readState, m.viewerID, m.entries)

	case readStateMsg:
		if msg.err != nil {
			m.log.Warn("read-state load failed", logging.F("error", msg.err))
			return m, nil
		}
		m.lastRead = msg.lastRead
		return m, nil

	case historyMsg:
		if msg.err != nil {
			m.conversation.HistoryFailed(msg.partnerID, msg.err)
			m.log.Warn("history fetch failed",
				logging.F("partner", msg.partnerID),
				logging.F("error", msg.err))
			return m, nil
		}
		m.conversation.HistoryLoaded(msg.partnerID, msg.messages)
		m.refreshMessages()
		return m, m.markOpenConversationRead()

	case eventsMsg:
		if msg.err != nil {
			m.status = "realtime unavailable: " + msg.err.Error()
			m.log.Warn("realtime subscribe failed", logging.F("error", msg.err))
			return m, nil
		}
		// Attach must run before SetStream: its detach fires the previous
		// handle, which resets whatever the pump holds at that moment.
		m.conversation.Attach(m.pump.Reset)
		m.pump.SetStream(msg.ch, msg.cancel)
		return m, nil

	case sendResultMsg:
		if msg.err != nil {
			m.status = "send failed: " + msg.err.Error()
			m.log.Warn("send failed", logging.F("error", msg.err))
		}
		return m, nil

	case markedReadMsg:
		if msg.err != nil {
			m.log.Warn("mark read failed", logging.F("error", msg.err))
			return m, nil
		}
		if m.lastRead[msg.key] < msg.messageID {
			m.lastRead[msg.key] = msg.messageID
		}
		return m, nil

	case appStateSavedMsg:
		if msg.err != nil {
			m.log.Warn("app state save failed", logging.F("error", msg.err))
		}
		return m, nil

	case tickMsg:
		return m, m.consumeEvents()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.loader, cmd = m.loader.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.conversation.Leave()
		return m, tea.Quit
	case "ctrl+y":
		m.copyNewestMessage()
		return m, nil
	}

	if m.focus == focusComposer {
		switch msg.String() {
		case "esc":
			m.focus = focusSidebar
			m.composer.Blur()
			return m, nil
		case "enter":
			return m, m.sendComposed()
		}
		var cmd tea.Cmd
		m.composer, cmd = m.composer.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		m.conversation.Leave()
		return m, tea.Quit
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil
	case "down", "j":
		if m.selected < len(m.entries)-1 {
			m.selected++
		}
		return m, nil
	case "r":
		m.indexPending = true
		return m, fetchChatIndexCmd(m.api, m.viewerID)
	case "tab", "i":
		if m.conversation.Phase() != chat.PhaseIdle {
			m.focus = focusComposer
			return m, m.composer.Focus()
		}
		return m, nil
	case "enter":
		if len(m.entries) == 0 {
			return m, nil
		}
		entry := m.entries[m.selected]
		partnerID := m.entryPartnerID(entry)
		return m, m.openConversation(partnerID)
	}
	return m, nil
}

// openConversation drives Idle/Failed/Ready -> Loading with a fresh store,
// then fans out the history fetch and a fresh realtime subscription. The old
// subscription is cancelled inside Begin, before the new one attaches.
func (m *Model) openConversation(partnerID int64) tea.Cmd {
	m.conversation.Begin(partnerID)
	m.focus = focusComposer
	m.refreshMessages()
	return tea.Batch(
		fetchHistoryCmd(m.api, m.viewerID, partnerID),
		openEventsCmd(m.api),
		saveAppStateCmd(m.appState, types.AppState{ViewerUserID: m.viewerID, ActivePartnerID: partnerID}),
		m.composer.Focus(),
	)
}

// consumeEvents drains a bounded slice of realtime events, reconciles them
// through the conversation controller, and schedules the follow-up work:
// an index refetch when a merge changed anything visible, a resubscribe when
// the stream closed.
func (m *Model) consumeEvents() tea.Cmd {
	cmds := []tea.Cmd{tickCmd()}

	before := m.conversation.Store().Len()
	refresh, closed := m.pump.ConsumeTick(m.conversation.Deliver)
	if refresh {
		m.indexPending = true
		cmds = append(cmds, fetchChatIndexCmd(m.api, m.viewerID))
	}
	if closed && m.conversation.Phase() != chat.PhaseIdle {
		cmds = append(cmds, openEventsCmd(m.api))
	}
	if m.conversation.Store().Len() != before {
		m.refreshMessages()
		if cmd := m.markOpenConversationRead(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

func (m *Model) sendComposed() tea.Cmd {
	text := strings.TrimSpace(m.composer.Value())
	if text == "" || m.conversation.Phase() == chat.PhaseIdle {
		return nil
	}
	m.composer.SetValue("")
	// No local echo: the server relays the persisted message back on the
	// sender's own subscription.
	return sendChatCmd(m.api, client.SendChatRequest{
		SenderUserID:    m.viewerID,
		RecipientUserID: m.conversation.PartnerID(),
		Message:         text,
	})
}

func (m *Model) markOpenConversationRead() tea.Cmd {
	msgs := m.conversation.Store().Messages()
	if len(msgs) == 0 {
		return nil
	}
	return markReadCmd(m.readState, m.viewerID, m.conversation.PartnerID(), msgs[0].ID)
}

func (m *Model) copyNewestMessage() {
	msgs := m.conversation.Store().Messages()
	if len(msgs) == 0 {
		return
	}
	if err := clipboard.WriteAll(msgs[0].Body); err != nil {
		m.status = "copy failed: " + err.Error()
		return
	}
	m.status = "copied last message"
}

func (m *Model) entryPartnerID(entry types.ChatHistoryEntry) int64 {
	if entry.RecipientUserID == m.viewerID {
		return entry.SenderUserID
	}
	return entry.RecipientUserID
}

func (m *Model) entryUnread(entry types.ChatHistoryEntry) bool {
	if entry.SenderUserID == m.viewerID {
		return false
	}
	key := chat.ConversationKey(entry.SenderUserID, entry.RecipientUserID)
	return entry.ID > m.lastRead[key]
}
