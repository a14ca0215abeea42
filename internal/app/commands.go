package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"bizchat/internal/chat"
	"bizchat/internal/client"
	"bizchat/internal/store"
	"bizchat/internal/types"
)

func fetchChatIndexCmd(api ChatAPI, viewerID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
		defer cancel()
		entries, err := api.ChatHistory(ctx, viewerID)
		return chatIndexMsg{entries: entries, err: err}
	}
}

func fetchHistoryCmd(api ChatAPI, viewerID, partnerID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
		defer cancel()
		messages, err := api.Messages(ctx, viewerID, partnerID)
		return historyMsg{partnerID: partnerID, messages: messages, err: err}
	}
}

func openEventsCmd(api ChatAPI) tea.Cmd {
	return func() tea.Msg {
		ch, cancel, err := api.Events(context.Background())
		return eventsMsg{ch: ch, cancel: cancel, err: err}
	}
}

func sendChatCmd(api ChatAPI, req client.SendChatRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
		defer cancel()
		err := api.SendChat(ctx, req)
		return sendResultMsg{partnerID: req.RecipientUserID, err: err}
	}
}

func loadReadStateCmd(readState store.ReadStateStore, viewerID int64, entries []types.ChatHistoryEntry) tea.Cmd {
	if readState == nil || len(entries) == 0 {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
		defer cancel()
		lastRead := make(map[string]int64, len(entries))
		for _, entry := range entries {
			key := chat.ConversationKey(entry.SenderUserID, entry.RecipientUserID)
			last, err := readState.LastRead(ctx, entry.SenderUserID, entry.RecipientUserID)
			if err != nil {
				return readStateMsg{err: err}
			}
			lastRead[key] = last
		}
		return readStateMsg{lastRead: lastRead}
	}
}

func markReadCmd(readState store.ReadStateStore, viewerID, partnerID, messageID int64) tea.Cmd {
	if readState == nil || messageID <= 0 {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
		defer cancel()
		err := readState.MarkRead(ctx, viewerID, partnerID, messageID)
		return markedReadMsg{
			key:       chat.ConversationKey(viewerID, partnerID),
			messageID: messageID,
			err:       err,
		}
	}
}

func saveAppStateCmd(appState store.AppStateStore, state types.AppState) tea.Cmd {
	if appState == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
		defer cancel()
		err := appState.Save(ctx, &state)
		return appStateSavedMsg{err: err}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
