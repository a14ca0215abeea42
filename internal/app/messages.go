package app

import (
	"time"

	"bizchat/internal/types"
)

type chatIndexMsg struct {
	entries []types.ChatHistoryEntry
	err     error
}

type historyMsg struct {
	partnerID int64
	messages  []types.Message
	err       error
}

type eventsMsg struct {
	ch     <-chan types.Message
	cancel func()
	err    error
}

type sendResultMsg struct {
	partnerID int64
	err       error
}

type readStateMsg struct {
	lastRead map[string]int64
	err      error
}

type markedReadMsg struct {
	key       string
	messageID int64
	err       error
}

type appStateSavedMsg struct {
	err error
}

type tickMsg time.Time
