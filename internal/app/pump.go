package app

import "bizchat/internal/types"

// EventPump drains the realtime subscription in bounded slices so a burst of
// events can never starve the UI loop. It owns the subscription handle; the
// conversation controller owns what each event means.
type EventPump struct {
	events           <-chan types.Message
	cancel           func()
	maxEventsPerTick int
}

func NewEventPump(maxEventsPerTick int) *EventPump {
	return &EventPump{maxEventsPerTick: maxEventsPerTick}
}

func (p *EventPump) HasStream() bool {
	if p == nil {
		return false
	}
	return p.events != nil
}

// SetStream replaces the current subscription, detaching the old one first.
func (p *EventPump) SetStream(ch <-chan types.Message, cancel func()) {
	if p == nil {
		return
	}
	p.Reset()
	p.events = ch
	p.cancel = cancel
}

func (p *EventPump) Reset() {
	if p == nil {
		return
	}
	if p.cancel != nil {
		p.cancel()
	}
	p.cancel = nil
	p.events = nil
}

// ConsumeTick applies up to maxEventsPerTick pending events through deliver.
// refresh reports whether any event asked for a conversation-index refetch;
// closed reports that the subscription ended and must be reopened.
func (p *EventPump) ConsumeTick(deliver func(types.Message) bool) (refresh bool, closed bool) {
	if p == nil || p.events == nil {
		return false, false
	}
	for i := 0; i < p.maxEventsPerTick; i++ {
		select {
		case msg, ok := <-p.events:
			if !ok {
				p.events = nil
				p.cancel = nil
				return refresh, true
			}
			if deliver(msg) {
				refresh = true
			}
		default:
			return refresh, false
		}
	}
	return refresh, false
}
