package client

import (
	"encoding/json"

	"bizchat/internal/types"
)

type MessagesResponse struct {
	Messages []types.Message `json:"messages"`
}

// Realtime event names. EventReceiveChat is spelled exactly as the backend
// emits it; the misspelling is part of the wire contract.
const (
	EventSendChat    = "send-chat"
	EventReceiveChat = "recieve-chat"
)

// Frame is the envelope both realtime transports carry.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// SendChatRequest is the outbound send-chat payload. Sends are
// fire-and-forget: the server persists the message and relays the stored
// record back on the sender's own subscription.
type SendChatRequest struct {
	SenderUserID    int64  `json:"senderUserId"`
	RecipientUserID int64  `json:"recipientUserId"`
	Message         string `json:"message"`
}
