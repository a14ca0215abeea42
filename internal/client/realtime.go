package client

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"bizchat/internal/logging"
	"bizchat/internal/types"
)

const (
	subscriberBuffer = 256
	redialInitial    = 500 * time.Millisecond
	redialMax        = 15 * time.Second
)

// Transport carries realtime frames in both directions. The two
// implementations (websocket, long-polling) deliver the same event contract;
// which one a session ends up on is an availability concern only.
type Transport interface {
	Receive(ctx context.Context) (Frame, error)
	Send(ctx context.Context, frame Frame) error
	Close() error
}

// Realtime is the process-wide connection to the backend's message event
// stream: one connection per client session, constructed at startup and torn
// down at session end. Views subscribe through Events and detach with the
// returned cancel func before a new view attaches.
//
// Delivery is at-least-once. Reconnects may replay or miss events; consumers
// dedupe by message id and otherwise accept the gap.
type Realtime struct {
	baseURL    string
	token      string
	transports []string
	connID     string
	log        logging.Logger

	loopCtx    context.Context
	loopCancel context.CancelFunc

	mu      sync.Mutex
	conn    Transport
	subs    map[int]chan types.Message
	nextSub int
	started bool
}

func NewRealtime(baseURL, token string, transports []string, log logging.Logger) *Realtime {
	if len(transports) == 0 {
		transports = []string{"websocket", "polling"}
	}
	if log == nil {
		log = logging.Nop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Realtime{
		baseURL:    baseURL,
		token:      token,
		transports: append([]string(nil), transports...),
		connID:     uuid.NewString(),
		log:        log,
		loopCtx:    ctx,
		loopCancel: cancel,
		subs:       map[int]chan types.Message{},
	}
}

// Connect negotiates a transport, preferring the lower-latency stream and
// falling back to polling, then starts the shared read loop.
func (r *Realtime) Connect(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == nil {
		conn, err := r.dial(ctx)
		if err != nil {
			return err
		}
		r.conn = conn
	}
	if !r.started {
		r.started = true
		go r.readLoop()
	}
	return nil
}

func (r *Realtime) dial(ctx context.Context) (Transport, error) {
	var lastErr error
	for _, name := range r.transports {
		switch name {
		case "websocket":
			conn, err := dialWebSocket(ctx, r.baseURL, r.token, r.connID)
			if err == nil {
				r.log.Debug("realtime connected", logging.F("transport", "websocket"))
				return conn, nil
			}
			lastErr = err
			r.log.Warn("websocket transport unavailable", logging.F("error", err))
		case "polling":
			conn := newPollTransport(r.baseURL, r.token, r.connID)
			if err := conn.probe(ctx); err != nil {
				lastErr = err
				r.log.Warn("polling transport unavailable", logging.F("error", err))
				continue
			}
			r.log.Debug("realtime connected", logging.F("transport", "polling"))
			return conn, nil
		default:
			lastErr = errors.New("unknown realtime transport: " + name)
		}
	}
	if lastErr == nil {
		lastErr = errors.New("no realtime transport configured")
	}
	return nil, lastErr
}

// Events subscribes to inbound message events. The returned cancel func
// detaches the subscription; it must be called before a replacement view
// attaches so a stale consumer can never double-deliver.
func (r *Realtime) Events(ctx context.Context) (<-chan types.Message, func(), error) {
	if err := r.Connect(ctx); err != nil {
		return nil, nil, err
	}

	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	ch := make(chan types.Message, subscriberBuffer)
	r.subs[id] = ch
	r.mu.Unlock()

	cancel := func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if sub, ok := r.subs[id]; ok {
			delete(r.subs, id)
			close(sub)
		}
	}
	return ch, cancel, nil
}

// SendChat emits an outbound send-chat event. Fire-and-forget: no ack and no
// local echo; the server relays the persisted message back on the sender's
// own subscription.
func (r *Realtime) SendChat(ctx context.Context, req SendChatRequest) error {
	if err := r.Connect(ctx); err != nil {
		return err
	}
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}
	r.mu.Lock()
	conn := r.conn
	r.mu.Unlock()
	if conn == nil {
		return errors.New("realtime channel not connected")
	}
	return conn.Send(ctx, Frame{Event: EventSendChat, Data: data})
}

// Close tears the connection down and closes every remaining subscription.
func (r *Realtime) Close() error {
	r.loopCancel()
	r.mu.Lock()
	defer r.mu.Unlock()
	var err error
	if r.conn != nil {
		err = r.conn.Close()
		r.conn = nil
	}
	for id, sub := range r.subs {
		delete(r.subs, id)
		close(sub)
	}
	return err
}

func (r *Realtime) readLoop() {
	backoff := redialInitial
	for {
		if r.loopCtx.Err() != nil {
			return
		}
		r.mu.Lock()
		conn := r.conn
		r.mu.Unlock()

		if conn == nil {
			next, err := r.dial(r.loopCtx)
			if err != nil {
				r.log.Warn("realtime redial failed", logging.F("error", err), logging.F("retry_in", backoff))
				select {
				case <-r.loopCtx.Done():
					return
				case <-time.After(backoff):
				}
				backoff *= 2
				if backoff > redialMax {
					backoff = redialMax
				}
				continue
			}
			r.mu.Lock()
			r.conn = next
			r.mu.Unlock()
			backoff = redialInitial
			continue
		}

		frame, err := conn.Receive(r.loopCtx)
		if err != nil {
			if r.loopCtx.Err() != nil {
				return
			}
			r.log.Warn("realtime receive failed", logging.F("error", err))
			r.dropConn(conn)
			continue
		}
		if frame.Event != EventReceiveChat {
			continue
		}
		var msg types.Message
		if err := json.Unmarshal(frame.Data, &msg); err != nil {
			// Malformed events are tolerated, never raised.
			r.log.Debug("dropping malformed message event", logging.F("error", err))
			continue
		}
		r.broadcast(msg)
	}
}

func (r *Realtime) broadcast(msg types.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sub := range r.subs {
		select {
		case sub <- msg:
		default:
		}
	}
}

func (r *Realtime) dropConn(conn Transport) {
	_ = conn.Close()
	r.mu.Lock()
	if r.conn == conn {
		r.conn = nil
	}
	r.mu.Unlock()
}
