package events

import (
	"time"

	"github.com/saif87211/SkFoodDelight/internal/domain"
)

// OrderCreatedEvent is emitted exactly once per durably committed order,
// after the transaction has committed.
type OrderCreatedEvent struct {
	EventID   string       `json:"event_id"`
	Order     domain.Order `json:"order"`
	Timestamp time.Time    `json:"timestamp"`
	RequestID string       `json:"request_id"`
}

// OrderStatusChangedEvent mirrors staff-driven state transitions onto the
// integration stream.
type OrderStatusChangedEvent struct {
	EventID   string             `json:"event_id"`
	OrderID   string             `json:"order_id"`
	From      domain.OrderStatus `json:"from"`
	To        domain.OrderStatus `json:"to"`
	Timestamp time.Time          `json:"timestamp"`
	RequestID string             `json:"request_id"`
}
