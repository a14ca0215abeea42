package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"bizchat/internal/logging"
	"bizchat/internal/types"
)

var upgrader = websocket.Upgrader{}

func receiveChatFrame(id, sender, recipient int64, body string) Frame {
	data, _ := json.Marshal(types.Message{
		ID:              id,
		SenderUserID:    sender,
		RecipientUserID: recipient,
		Body:            body,
	})
	return Frame{Event: EventReceiveChat, Data: data}
}

func waitForMessage(t *testing.T, ch <-chan types.Message) types.Message {
	t.Helper()
	select {
	case msg, ok := <-ch:
		if !ok {
			t.Fatalf("event channel closed unexpectedly")
		}
		return msg
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for a message event")
	}
	return types.Message{}
}

func TestRealtimeWebSocketDelivery(t *testing.T) {
	var seenAuth string
	sent := make(chan Frame, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/socket" {
			http.NotFound(w, r)
			return
		}
		seenAuth = r.Header.Get("Authorization")
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		if err := conn.WriteJSON(receiveChatFrame(7, 2, 1, "hi there")); err != nil {
			return
		}
		var frame Frame
		if err := conn.ReadJSON(&frame); err != nil {
			return
		}
		sent <- frame
		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	rt := NewRealtime(server.URL, "token", []string{"websocket"}, logging.Nop())
	defer rt.Close()

	events, cancel, err := rt.Events(context.Background())
	if err != nil {
		t.Fatalf("Events error: %v", err)
	}
	defer cancel()

	msg := waitForMessage(t, events)
	if msg.ID != 7 || msg.Body != "hi there" {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if seenAuth != "Bearer token" {
		t.Fatalf("unexpected auth header on dial: %s", seenAuth)
	}

	if err := rt.SendChat(context.Background(), SendChatRequest{SenderUserID: 1, RecipientUserID: 2, Message: "hello"}); err != nil {
		t.Fatalf("SendChat error: %v", err)
	}
	select {
	case frame := <-sent:
		if frame.Event != EventSendChat {
			t.Fatalf("unexpected outbound event name: %s", frame.Event)
		}
		var req SendChatRequest
		if err := json.Unmarshal(frame.Data, &req); err != nil {
			t.Fatalf("decode outbound payload: %v", err)
		}
		if req.SenderUserID != 1 || req.RecipientUserID != 2 || req.Message != "hello" {
			t.Fatalf("unexpected outbound payload: %+v", req)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for the outbound frame")
	}
}

func TestRealtimeFallsBackToPolling(t *testing.T) {
	var polled bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/socket":
			// Streaming transport unavailable.
			http.NotFound(w, r)
		case "/socket/poll":
			w.Header().Set("Content-Type", "application/json")
			if polled {
				_, _ = w.Write([]byte(`[]`))
				return
			}
			polled = true
			frame := receiveChatFrame(11, 2, 1, "over polling")
			_ = json.NewEncoder(w).Encode([]Frame{frame})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	rt := NewRealtime(server.URL, "token", []string{"websocket", "polling"}, logging.Nop())
	defer rt.Close()

	events, cancel, err := rt.Events(context.Background())
	if err != nil {
		t.Fatalf("Events error: %v", err)
	}
	defer cancel()

	msg := waitForMessage(t, events)
	if msg.ID != 11 || msg.Body != "over polling" {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

func TestRealtimeIgnoresUnknownAndMalformedEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`not json at all`))
		_ = conn.WriteJSON(Frame{Event: "presence", Data: json.RawMessage(`{}`)})
		_ = conn.WriteJSON(Frame{Event: EventReceiveChat, Data: json.RawMessage(`{"id":"not a number"}`)})
		_ = conn.WriteJSON(receiveChatFrame(3, 2, 1, "survivor"))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	rt := NewRealtime(server.URL, "token", []string{"websocket"}, logging.Nop())
	defer rt.Close()

	events, cancel, err := rt.Events(context.Background())
	if err != nil {
		t.Fatalf("Events error: %v", err)
	}
	defer cancel()

	msg := waitForMessage(t, events)
	if msg.ID != 3 || msg.Body != "survivor" {
		t.Fatalf("noise should be skipped, got %+v", msg)
	}
}

func TestRealtimeCancelDetachesSubscription(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	rt := NewRealtime(server.URL, "token", []string{"websocket"}, logging.Nop())
	defer rt.Close()

	events, cancel, err := rt.Events(context.Background())
	if err != nil {
		t.Fatalf("Events error: %v", err)
	}
	cancel()

	select {
	case _, ok := <-events:
		if ok {
			t.Fatalf("no event expected after cancel")
		}
	case <-time.After(time.Second):
		t.Fatalf("cancel must close the subscription channel")
	}

	// Cancelling twice is safe.
	cancel()
}
