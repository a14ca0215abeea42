package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const pollWaitSeconds = 25

// pollTransport is the long-polling fallback: inbound frames via repeated
// GET /socket/poll, outbound via POST /socket/emit. Same frame contract as
// the websocket transport, higher latency.
type pollTransport struct {
	baseURL string
	token   string
	connID  string
	http    *http.Client
	queue   []Frame
}

func newPollTransport(baseURL, token, connID string) *pollTransport {
	return &pollTransport{
		baseURL: baseURL,
		token:   token,
		connID:  connID,
		http: &http.Client{
			Timeout: (pollWaitSeconds + 10) * time.Second,
		},
	}
}

// probe checks the endpoint is reachable before the transport is selected.
func (t *pollTransport) probe(ctx context.Context) error {
	_, err := t.poll(ctx, 0)
	return err
}

func (t *pollTransport) Receive(ctx context.Context) (Frame, error) {
	for {
		if len(t.queue) > 0 {
			frame := t.queue[0]
			t.queue = t.queue[1:]
			return frame, nil
		}
		if err := ctx.Err(); err != nil {
			return Frame{}, err
		}
		frames, err := t.poll(ctx, pollWaitSeconds)
		if err != nil {
			return Frame{}, err
		}
		t.queue = append(t.queue, frames...)
	}
}

func (t *pollTransport) poll(ctx context.Context, wait int) ([]Frame, error) {
	url := fmt.Sprintf("%s/socket/poll?cid=%s&wait=%d", t.baseURL, t.connID, wait)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+t.token)

	resp, err := t.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeAPIError(resp)
	}
	var frames []Frame
	if err := json.NewDecoder(resp.Body).Decode(&frames); err != nil {
		return nil, err
	}
	return frames, nil
}

func (t *pollTransport) Send(ctx context.Context, frame Frame) error {
	buf, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/socket/emit?cid=%s", t.baseURL, t.connID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.token)

	resp, err := t.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	return nil
}

func (t *pollTransport) Close() error {
	return nil
}
