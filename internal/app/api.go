package app

import (
	"context"

	"bizchat/internal/client"
	"bizchat/internal/types"
)

// ChatAPI is everything the UI needs from the backend: history and index
// over REST, live events and sends over the realtime channel.
type ChatAPI interface {
	Messages(ctx context.Context, userIDOne, userIDTwo int64) ([]types.Message, error)
	ChatHistory(ctx context.Context, viewerID int64) ([]types.ChatHistoryEntry, error)
	Events(ctx context.Context) (<-chan types.Message, func(), error)
	SendChat(ctx context.Context, req client.SendChatRequest) error
}

type ClientAPI struct {
	rest     *client.Client
	realtime *client.Realtime
}

func NewClientAPI(rest *client.Client, realtime *client.Realtime) *ClientAPI {
	return &ClientAPI{rest: rest, realtime: realtime}
}

func (a *ClientAPI) Messages(ctx context.Context, userIDOne, userIDTwo int64) ([]types.Message, error) {
	return a.rest.Messages(ctx, userIDOne, userIDTwo)
}

func (a *ClientAPI) ChatHistory(ctx context.Context, viewerID int64) ([]types.ChatHistoryEntry, error) {
	return a.rest.ChatHistory(ctx, viewerID)
}

func (a *ClientAPI) Events(ctx context.Context) (<-chan types.Message, func(), error) {
	return a.realtime.Events(ctx)
}

func (a *ClientAPI) SendChat(ctx context.Context, req client.SendChatRequest) error {
	return a.realtime.SendChat(ctx, req)
}
