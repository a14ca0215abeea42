package chat

import (
	"testing"
	"time"

	"bizchat/internal/types"
)

func entry(id, sender, recipient int64, preview string) types.ChatHistoryEntry {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return types.ChatHistoryEntry{
		ID:              id,
		SenderUserID:    sender,
		RecipientUserID: recipient,
		Preview:         preview,
		CreatedAt:       at,
		UpdatedAt:       at,
		Sender:          types.Party{ID: sender, FirstName: "Sender", LastName: "Side", MobileNumber: "111"},
		Recipient:       types.Party{ID: recipient, FirstName: "Recipient", LastName: "Side", MobileNumber: "222"},
	}
}

func TestResolveCounterpartSymmetry(t *testing.T) {
	entries := []types.ChatHistoryEntry{entry(10, 1, 2, "hi")}

	fromA := ResolveCounterpart(entries, 1, 2)
	fromB := ResolveCounterpart(entries, 2, 1)
	if fromA == nil || fromB == nil {
		t.Fatalf("expected the entry from both viewpoints, got %v and %v", fromA, fromB)
	}
	if fromA.ID != 10 || fromB.ID != 10 {
		t.Fatalf("expected entry 10 from both viewpoints, got %d and %d", fromA.ID, fromB.ID)
	}
}

func TestResolveCounterpartReturnsFirstMatch(t *testing.T) {
	entries := []types.ChatHistoryEntry{
		entry(10, 3, 1, "other"),
		entry(11, 1, 2, "first"),
		entry(12, 2, 1, "second"),
	}
	got := ResolveCounterpart(entries, 1, 2)
	if got == nil || got.ID != 11 {
		t.Fatalf("expected entry 11, got %+v", got)
	}
}

func TestResolveCounterpartNoMatchReturnsNil(t *testing.T) {
	if got := ResolveCounterpart(nil, 1, 2); got != nil {
		t.Fatalf("expected nil for empty index, got %+v", got)
	}
	entries := []types.ChatHistoryEntry{entry(10, 3, 4, "other people")}
	if got := ResolveCounterpart(entries, 1, 2); got != nil {
		t.Fatalf("expected nil when the viewer has no history with the partner, got %+v", got)
	}
}

func TestPartnerIsSenderPicksIdentitySide(t *testing.T) {
	e := entry(10, 5, 6, "hi")

	if !PartnerIsSender(e, 5) {
		t.Fatalf("partner 5 is the sender side")
	}
	if PartnerIsSender(e, 6) {
		t.Fatalf("partner 6 is the recipient side")
	}
	if got := CounterpartParty(e, 5); got.ID != 5 || got.FirstName != "Sender" {
		t.Fatalf("expected sender identity, got %+v", got)
	}
	if got := CounterpartParty(e, 6); got.ID != 6 || got.FirstName != "Recipient" {
		t.Fatalf("expected recipient identity, got %+v", got)
	}
}

func TestConversationKeyIsUnordered(t *testing.T) {
	if ConversationKey(1, 2) != ConversationKey(2, 1) {
		t.Fatalf("key must not depend on participant order")
	}
	if ConversationKey(1, 2) == ConversationKey(1, 3) {
		t.Fatalf("distinct pairs must have distinct keys")
	}
	if got := ConversationKey(7, 3); got != "3/7" {
		t.Fatalf("expected 3/7, got %s", got)
	}
}

func TestPartyDisplayName(t *testing.T) {
	p := types.Party{FirstName: " Ada ", LastName: "Lovelace"}
	if got := p.DisplayName(); got != "Ada Lovelace" {
		t.Fatalf("expected trimmed full name, got %q", got)
	}
	if got := (types.Party{}).DisplayName(); got != "Unknown" {
		t.Fatalf("expected placeholder for empty identity, got %q", got)
	}
}
