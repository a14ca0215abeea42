package chat

import (
	"errors"
	"testing"

	"bizchat/internal/types"
)

func TestControllerHappyPath(t *testing.T) {
	c := NewConversationController(1)
	if c.Phase() != PhaseIdle {
		t.Fatalf("expected idle, got %s", c.Phase())
	}

	c.Begin(2)
	if c.Phase() != PhaseLoading {
		t.Fatalf("expected loading, got %s", c.Phase())
	}

	c.HistoryLoaded(2, []types.Message{msg(5, 2, 1, "hello")})
	if c.Phase() != PhaseReady {
		t.Fatalf("expected ready, got %s", c.Phase())
	}
	if c.Store().Len() != 1 {
		t.Fatalf("expected 1 message, got %d", c.Store().Len())
	}
}

func TestControllerHistoryFailed(t *testing.T) {
	c := NewConversationController(1)
	c.Begin(2)
	c.HistoryFailed(2, errors.New("network down"))

	if c.Phase() != PhaseFailed {
		t.Fatalf("expected failed, got %s", c.Phase())
	}
	if c.Err() == nil {
		t.Fatalf("expected the fetch error to be retained")
	}

	// Reopening retries implicitly.
	c.Begin(2)
	if c.Phase() != PhaseLoading || c.Err() != nil {
		t.Fatalf("expected a clean loading state after reopen")
	}
}

func TestControllerDropsStaleHistoryResponse(t *testing.T) {
	c := NewConversationController(1)
	c.Begin(2)
	c.Begin(3)

	c.HistoryLoaded(2, []types.Message{msg(5, 2, 1, "stale")})
	if c.Phase() != PhaseLoading {
		t.Fatalf("history for a closed conversation must not transition the view")
	}

	c.HistoryLoaded(3, nil)
	if c.Phase() != PhaseReady || c.Store().Len() != 0 {
		t.Fatalf("expected empty ready state for the open conversation")
	}
}

func TestControllerDeliverMergesAndSignalsRefresh(t *testing.T) {
	c := NewConversationController(1)
	c.Begin(2)
	c.HistoryLoaded(2, []types.Message{msg(5, 2, 1, "hello")})

	if !c.Deliver(msg(6, 1, 2, "reply")) {
		t.Fatalf("a new message for the open conversation must invalidate the index")
	}
	if c.Store().Len() != 2 {
		t.Fatalf("expected 2 messages, got %d", c.Store().Len())
	}

	// Reconnect replay of a message already fetched via history.
	if c.Deliver(msg(5, 2, 1, "hello")) {
		t.Fatalf("a duplicate must neither change the store nor invalidate the index")
	}
	if c.Store().Len() != 2 {
		t.Fatalf("expected store length to stay 2, got %d", c.Store().Len())
	}
}

func TestControllerDeliverOtherConversation(t *testing.T) {
	c := NewConversationController(1)
	c.Begin(2)
	c.HistoryLoaded(2, nil)

	// Another partner messaging the viewer: sidebar changes, store does not.
	if !c.Deliver(msg(7, 3, 1, "different thread")) {
		t.Fatalf("activity in another conversation of the viewer must invalidate the index")
	}
	if c.Store().Len() != 0 {
		t.Fatalf("foreign message must not enter the open store")
	}

	// Traffic between two other users is not ours at all.
	if c.Deliver(msg(8, 3, 4, "not ours")) {
		t.Fatalf("messages not involving the viewer must be ignored")
	}
}

func TestControllerDeliverBeforeReady(t *testing.T) {
	c := NewConversationController(1)
	c.Begin(2)

	if !c.Deliver(msg(5, 2, 1, "early")) {
		t.Fatalf("viewer activity during load still invalidates the index")
	}
	if c.Store().Len() != 0 {
		t.Fatalf("store must not be touched before history arrives")
	}
}

func TestControllerLeaveCancelsSubscription(t *testing.T) {
	c := NewConversationController(1)
	c.Begin(2)
	c.HistoryLoaded(2, nil)

	cancelled := 0
	c.Attach(func() { cancelled++ })
	c.Leave()

	if cancelled != 1 {
		t.Fatalf("expected exactly one cancel, got %d", cancelled)
	}
	if c.Phase() != PhaseIdle || c.Store() != nil {
		t.Fatalf("expected idle with no store after leave")
	}
	c.Deliver(msg(9, 2, 1, "late"))
	if c.Store() != nil {
		t.Fatalf("no store may be mutated after leave")
	}
}

func TestControllerBeginReplacesSubscriptionAndStore(t *testing.T) {
	c := NewConversationController(1)
	c.Begin(2)
	c.HistoryLoaded(2, []types.Message{msg(5, 2, 1, "hello")})
	first := c.Store()

	cancelled := 0
	c.Attach(func() { cancelled++ })
	c.Begin(3)

	if cancelled != 1 {
		t.Fatalf("switching conversations must cancel the old subscription first")
	}
	if c.Store() == first {
		t.Fatalf("switching conversations must not reuse the previous store")
	}
	if c.Store().Len() != 0 {
		t.Fatalf("fresh conversation must start empty")
	}
}
