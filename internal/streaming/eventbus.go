package streaming

import (
	"context"
	"fmt"
	"sync"

	"signalguard/pkg/logger"
)

// EventBus distributes pipeline events to in-process subscribers and,
// when configured, to NATS. The NATS publisher is optional; publishing
// never fails the caller.
type EventBus struct {
	nats   *NATSPublisher
	logger *logger.Logger

	mu          sync.RWMutex
	subscribers map[string]chan *Event
	nextID      int
}

// NewEventBus creates a new event bus. nats may be nil.
func NewEventBus(nats *NATSPublisher, log *logger.Logger) *EventBus {
	return &EventBus{
		nats:        nats,
		logger:      log.WithComponent("event-bus"),
		subscribers: make(map[string]chan *Event),
	}
}

// Publish broadcasts an event to all subscribers
func (eb *EventBus) Publish(ctx context.Context, event *Event) {
	if eb.nats != nil && eb.nats.IsConnected() {
		if err := eb.nats.PublishEvent(ctx, event); err != nil {
			eb.logger.Warn().Err(err).Msg("failed to publish to NATS, using local broadcast only")
		}
	}

	eb.mu.RLock()
	defer eb.mu.RUnlock()

	for id, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			eb.logger.Debug().Str("subscriber", id).Msg("subscriber channel full, dropping event")
		}
	}
}

// Subscribe registers a subscriber and returns its channel plus an
// unsubscribe function
func (eb *EventBus) Subscribe() (<-chan *Event, func()) {
	eb.mu.Lock()
	eb.nextID++
	id := fmt.Sprintf("sub-%d", eb.nextID)
	ch := make(chan *Event, 100)
	eb.subscribers[id] = ch
	eb.mu.Unlock()

	eb.logger.Debug().Str("subscriber_id", id).Msg("new subscriber")

	unsubscribe := func() {
		eb.mu.Lock()
		defer eb.mu.Unlock()
		if _, ok := eb.subscribers[id]; ok {
			close(ch)
			delete(eb.subscribers, id)
		}
	}

	return ch, unsubscribe
}

// SubscriberCount returns the number of active subscribers
func (eb *EventBus) SubscriberCount() int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.subscribers)
}

// Close closes the event bus and the NATS connection if present
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	for id, ch := range eb.subscribers {
		close(ch)
		delete(eb.subscribers, id)
	}

	if eb.nats != nil {
		eb.nats.Close()
	}
}
