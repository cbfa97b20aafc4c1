package events

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/saif87211/SkFoodDelight/internal/domain"
)

func newEvent() OrderCreatedEvent {
	return OrderCreatedEvent{
		EventID:   uuid.New().String(),
		Order:     domain.Order{ID: uuid.New().String()},
		Timestamp: time.Now(),
	}
}

func TestPublishReachesAllSubscribers(t *testing.T) {
	hub := NewHub(4, zap.NewNop())
	defer hub.Close()

	a := hub.Subscribe()
	b := hub.Subscribe()

	event := newEvent()
	hub.Publish(event)

	require.Equal(t, event.Order.ID, (<-a.C).Order.ID)
	require.Equal(t, event.Order.ID, (<-b.C).Order.ID)
}

// Sessions connecting after an event do not receive it: there is no replay.
func TestLateSubscriberGetsNoBacklog(t *testing.T) {
	hub := NewHub(4, zap.NewNop())
	defer hub.Close()

	hub.Publish(newEvent())

	late := hub.Subscribe()
	select {
	case event := <-late.C:
		t.Fatalf("late subscriber received replayed event %s", event.EventID)
	default:
	}
}

// A subscriber that stops draining gets disconnected instead of blocking
// the publisher.
func TestSlowSubscriberIsDropped(t *testing.T) {
	hub := NewHub(1, zap.NewNop())
	defer hub.Close()

	slow := hub.Subscribe()
	first := newEvent()

	require.Zero(t, hub.Dropped())
	hub.Publish(first)
	hub.Publish(newEvent()) // buffer full, slow session dropped

	require.Zero(t, hub.SubscriberCount())
	require.Equal(t, 1, hub.Dropped())

	got, ok := <-slow.C
	require.True(t, ok)
	require.Equal(t, first.Order.ID, got.Order.ID)

	_, ok = <-slow.C
	require.False(t, ok, "channel must be closed after the drop")
}

func TestDroppedSubscriberDoesNotDelayOthers(t *testing.T) {
	hub := NewHub(1, zap.NewNop())
	defer hub.Close()

	slow := hub.Subscribe()
	healthy := hub.Subscribe()

	hub.Publish(newEvent())
	second := newEvent()
	<-healthy.C
	hub.Publish(second)

	require.Equal(t, second.Order.ID, (<-healthy.C).Order.ID)
	_ = slow
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	hub := NewHub(4, zap.NewNop())
	defer hub.Close()

	sub := hub.Subscribe()
	hub.Unsubscribe(sub)
	hub.Unsubscribe(sub)
	require.Zero(t, hub.SubscriberCount())
}

func TestClosedHubIsInert(t *testing.T) {
	hub := NewHub(4, zap.NewNop())
	sub := hub.Subscribe()
	hub.Close()

	_, ok := <-sub.C
	require.False(t, ok)

	// Publish and Subscribe after close must not panic.
	hub.Publish(newEvent())
	late := hub.Subscribe()
	_, ok = <-late.C
	require.False(t, ok)
}
