package types

import "time"

// Message is a single chat message as the backend returns it. Messages are
// immutable once created; the id is server-assigned and is the only identity
// key clients may rely on.
type Message struct {
	ID              int64      `json:"id"`
	SenderUserID    int64      `json:"senderUserId"`
	RecipientUserID int64      `json:"recipientUserId"`
	Body            string     `json:"message"`
	ReadAt          *time.Time `json:"readAt"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Involves reports whether userID is either side of the message.
func (m Message) Involves(userID int64) bool {
	return m.SenderUserID == userID || m.RecipientUserID == userID
}
