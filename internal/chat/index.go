package chat

import (
	"strconv"

	"bizchat/internal/types"
)

// entryPartner computes the counterpart user id of an index entry relative
// to the viewer: whichever side of the entry is not the viewer.
func entryPartner(entry types.ChatHistoryEntry, viewerID int64) int64 {
	if entry.RecipientUserID == viewerID {
		return entry.SenderUserID
	}
	return entry.RecipientUserID
}

// ResolveCounterpart returns the first index entry whose counterpart
// (relative to viewerID) is partnerID, or nil when the viewer has no
// conversation history with that partner yet. A nil result is a valid state,
// not an error: conversations started from a product or vendor page have no
// index entry until the first message round-trips.
func ResolveCounterpart(entries []types.ChatHistoryEntry, viewerID, partnerID int64) *types.ChatHistoryEntry {
	for i := range entries {
		if entryPartner(entries[i], viewerID) == partnerID {
			return &entries[i]
		}
	}
	return nil
}

// PartnerIsSender reports whether the counterpart is the sender side of the
// entry, which decides which embedded Party record carries the counterpart's
// name and phone number.
func PartnerIsSender(entry types.ChatHistoryEntry, partnerID int64) bool {
	return entry.SenderUserID == partnerID
}

// CounterpartParty returns the embedded identity of the counterpart.
func CounterpartParty(entry types.ChatHistoryEntry, partnerID int64) types.Party {
	if PartnerIsSender(entry, partnerID) {
		return entry.Sender
	}
	return entry.Recipient
}

// ConversationKey derives the stable key of a conversation from its
// unordered participant pair.
func ConversationKey(userA, userB int64) string {
	if userB < userA {
		userA, userB = userB, userA
	}
	return strconv.FormatInt(userA, 10) + "/" + strconv.FormatInt(userB, 10)
}
