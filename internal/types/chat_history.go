package types

import (
	"strings"
	"time"
)

// Party is the denormalized user identity the backend embeds on both sides of
// a conversation index entry.
type Party struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"firstName"`
	MiddleName   string `json:"middleName,omitempty"`
	LastName     string `json:"lastName"`
	Email        string `json:"email,omitempty"`
	MobileNumber string `json:"mobileNumber"`
	IsActive     bool   `json:"isActive"`
}

func (p Party) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
	if name == "" {
		return "Unknown"
	}
	return name
}

// ChatHistoryEntry is one row of the viewer's conversation index: the latest
// message of a conversation plus both participants' identities. The backend
// returns entries most recently updated first; the client renders them as-is.
type ChatHistoryEntry struct {
	ID              int64      `json:"id"`
	SenderUserID    int64      `json:"senderUserId"`
	RecipientUserID int64      `json:"recipientUserId"`
	Preview         string     `json:"message"`
	ReadAt          *time.Time `json:"readAt"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	Sender          Party      `json:"sender"`
	Recipient       Party      `json:"recipient"`
}
