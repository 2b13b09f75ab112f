package notify

import (
	"context"
	"sync"

	"github.com/example/event-calendar/internal/application"
)

const defaultHubBuffer = 16

// Hub fans payloads out to subscribers such as server-sent event streams.
// Publishing never blocks: a subscriber whose buffer is full misses the
// payload.
type Hub struct {
	mu     sync.Mutex
	next   uint64
	subs   map[uint64]chan application.Payload
	buffer int
	closed bool
}

// NewHub returns a hub whose subscriber channels hold buffer payloads.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = defaultHubBuffer
	}
	return &Hub{subs: make(map[uint64]chan application.Payload), buffer: buffer}
}

// Subscribe registers a subscriber. The returned cancel func unregisters it
// and closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe() (<-chan application.Payload, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan application.Payload, h.buffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	h.next++
	id := h.next
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if sub, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(sub)
			}
		})
	}
}

// Publish offers payload to every subscriber and returns how many took it.
func (h *Hub) Publish(payload application.Payload) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	delivered := 0
	for _, ch := range h.subs {
		select {
		case ch <- payload:
			delivered++
		default:
		}
	}
	return delivered
}

// Deliver implements Sink.
func (h *Hub) Deliver(ctx context.Context, payload application.Payload) error {
	delivered := h.Publish(payload)
	loggerFrom(ctx).DebugContext(ctx, "payload published", "tag", payload.Tag, "subscribers", delivered)
	return nil
}

// Subscribers reports how many subscribers are registered.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close unregisters every subscriber. Later subscriptions receive a closed
// channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
	h.closed = true
}
