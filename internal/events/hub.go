package events

import (
	"sync"

	"go.uber.org/zap"
)

// Subscriber is one connected admin session. Events arrive on C until the
// hub closes it, either on Unsubscribe or when the session falls too far
// behind.
type Subscriber struct {
	C  chan OrderCreatedEvent
	id int
}

// Hub fans OrderCreatedEvent out to every connected admin session. Delivery
// is best-effort with no replay: sessions that connect later re-fetch the
// active list over the normal read path, and the durable acknowledgment
// watermark keeps correctness independent of this channel.
type Hub struct {
	mu      sync.Mutex
	subs    map[int]*Subscriber
	nextID  int
	buffer  int
	closed  bool
	logger  *zap.Logger
	dropped int
}

func NewHub(buffer int, logger *zap.Logger) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{
		subs:   make(map[int]*Subscriber),
		buffer: buffer,
		logger: logger,
	}
}

func (h *Hub) Subscribe() *Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &Subscriber{
		C:  make(chan OrderCreatedEvent, h.buffer),
		id: h.nextID,
	}
	h.nextID++
	if h.closed {
		close(sub.C)
		return sub
	}
	h.subs[sub.id] = sub
	return sub
}

func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[sub.id]; ok {
		delete(h.subs, sub.id)
		close(sub.C)
	}
}

// Publish pushes the event to every subscriber without blocking on any of
// them. A subscriber whose buffer is full is disconnected; it re-syncs by
// reconnecting and re-fetching the list.
func (h *Hub) Publish(event OrderCreatedEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	for id, sub := range h.subs {
		select {
		case sub.C <- event:
		default:
			delete(h.subs, id)
			close(sub.C)
			h.dropped++
			h.logger.Warn("dropping slow event subscriber",
				zap.Int("subscriber_id", id),
				zap.String("order_id", event.Order.ID))
		}
	}
}

// SubscriberCount reports the number of connected sessions, for the health
// endpoint.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Dropped reports how many sessions the hub has disconnected for falling
// behind since startup, for the health endpoint.
func (h *Hub) Dropped() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}

// Close disconnects all subscribers. Further publishes are no-ops.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, sub := range h.subs {
		delete(h.subs, id)
		close(sub.C)
	}
}
