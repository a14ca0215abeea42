package chat

import "bizchat/internal/types"

// Phase is the lifecycle state of an open conversation view.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ConversationController owns the per-conversation lifecycle: history fetch
// into a fresh MessageStore, then reconciliation of realtime events for as
// long as the conversation is on screen. Switching conversations never
// reuses a store; Begin always starts from an empty one.
type ConversationController struct {
	viewerID  int64
	partnerID int64
	phase     Phase
	store     *MessageStore
	err       error
	cancel    func()
}

func NewConversationController(viewerID int64) *ConversationController {
	return &ConversationController{viewerID: viewerID, phase: PhaseIdle}
}

// Begin opens a conversation with partnerID and transitions to Loading.
// Any previous subscription is cancelled first so a stale store can never
// receive further events.
func (c *ConversationController) Begin(partnerID int64) {
	if c == nil {
		return
	}
	c.detach()
	c.partnerID = partnerID
	c.phase = PhaseLoading
	c.store = NewMessageStore()
	c.err = nil
}

// Attach records the cancel func of the realtime subscription feeding this
// conversation, replacing (and cancelling) any previous one.
func (c *ConversationController) Attach(cancel func()) {
	if c == nil {
		return
	}
	c.detach()
	c.cancel = cancel
}

// HistoryLoaded applies the fetched history and transitions to Ready.
// A response for a conversation that is no longer open is dropped.
func (c *ConversationController) HistoryLoaded(partnerID int64, msgs []types.Message) {
	if c == nil || c.phase != PhaseLoading || c.partnerID != partnerID {
		return
	}
	c.store.Load(msgs)
	c.phase = PhaseReady
}

// HistoryFailed transitions to Failed. There is no automatic retry;
// reopening the conversation retries implicitly.
func (c *ConversationController) HistoryFailed(partnerID int64, err error) {
	if c == nil || c.phase != PhaseLoading || c.partnerID != partnerID {
		return
	}
	c.err = err
	c.phase = PhaseFailed
}

// Deliver reconciles one realtime event. Only messages belonging to the open
// conversation's unordered pair reach the store; everything else that
// involves the viewer still means the sidebar preview changed. The return
// value is the signal to refetch the conversation index.
func (c *ConversationController) Deliver(msg types.Message) bool {
	if c == nil {
		return false
	}
	if c.phase == PhaseReady && c.matches(msg) {
		return c.store.Merge(msg)
	}
	return msg.Involves(c.viewerID)
}

// Leave cancels the subscription and returns to Idle. The store is dropped;
// nothing mutates it afterwards.
func (c *ConversationController) Leave() {
	if c == nil {
		return
	}
	c.detach()
	c.partnerID = 0
	c.phase = PhaseIdle
	c.store = nil
	c.err = nil
}

func (c *ConversationController) detach() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *ConversationController) matches(msg types.Message) bool {
	return ConversationKey(msg.SenderUserID, msg.RecipientUserID) == ConversationKey(c.viewerID, c.partnerID)
}

func (c *ConversationController) Phase() Phase {
	if c == nil {
		return PhaseIdle
	}
	return c.phase
}

func (c *ConversationController) PartnerID() int64 {
	if c == nil {
		return 0
	}
	return c.partnerID
}

func (c *ConversationController) Err() error {
	if c == nil {
		return nil
	}
	return c.err
}

func (c *ConversationController) Store() *MessageStore {
	if c == nil {
		return nil
	}
	return c.store
}
