package client

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// wsTransport is the preferred realtime transport: a single websocket
// carrying JSON frames in both directions.
type wsTransport struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func dialWebSocket(ctx context.Context, baseURL, token, connID string) (*wsTransport, error) {
	url := wsBaseURL(baseURL) + "/socket?transport=websocket&cid=" + connID
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		return nil, err
	}
	return &wsTransport{conn: conn}, nil
}

func (t *wsTransport) Receive(ctx context.Context) (Frame, error) {
	for {
		_, data, err := t.conn.ReadMessage()
		if err != nil {
			return Frame{}, err
		}
		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			// Skip undecodable frames; the connection itself is fine.
			continue
		}
		return frame, nil
	}
}

func (t *wsTransport) Send(ctx context.Context, frame Frame) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	return t.conn.WriteJSON(frame)
}

func (t *wsTransport) Close() error {
	return t.conn.Close()
}

func wsBaseURL(baseURL string) string {
	baseURL = strings.TrimRight(baseURL, "/")
	switch {
	case strings.HasPrefix(baseURL, "https://"):
		return "wss://" + strings.TrimPrefix(baseURL, "https://")
	case strings.HasPrefix(baseURL, "http://"):
		return "ws://" + strings.TrimPrefix(baseURL, "http://")
	default:
		return "ws://" + baseURL
	}
}
