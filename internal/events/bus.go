package events

import "sync"

// Event types broadcast to connected stations. Payloads carry the full
// entity graph so clients never need a follow-up fetch.
const (
	OrderNew    = "order:new"
	OrderUpdate = "order:update"
	TableUpdate = "table:update"
)

type Event struct {
	Type    string      `json:"event"`
	Payload interface{} `json:"data"`
}

// Publisher is what the lifecycle services see; publishing must never block
// a mutation and is not required for correctness.
type Publisher interface {
	Publish(eventType string, payload interface{})
}

// Bus is an in-process broadcast channel. Subscribers with a full buffer
// miss events rather than stalling the publisher.
type Bus struct {
	mu     sync.RWMutex
	subs   map[chan Event]struct{}
	buffer int
	closed bool
}

func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = 64
	}
	return &Bus{
		subs:   make(map[chan Event]struct{}),
		buffer: buffer,
	}
}

// Subscribe registers a new observer. The returned cancel func must be
// called when the observer goes away.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, b.buffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Publish fans the event out to every subscriber without blocking. A slow
// subscriber drops the event; clients resync on their next fetch.
func (b *Bus) Publish(eventType string, payload interface{}) {
	e := Event{Type: eventType, Payload: payload}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
}
