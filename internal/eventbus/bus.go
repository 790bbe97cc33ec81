// Package eventbus fans out live state-change notifications to connected
// subscribers. Delivery is best effort: there is no persistence, no replay,
// and no acknowledgement.
package eventbus

import (
	"log/slog"
	"sync"

	"github.com/couchcryptid/disaster-response-service/internal/domain"
	"github.com/couchcryptid/disaster-response-service/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Subscription is one connected subscriber. It has no identity beyond its
// lifetime: once unsubscribed its channel is closed and it receives nothing.
type Subscription struct {
	id    uint64
	scope map[string]struct{}
	ch    chan domain.Event
}

// Events returns the delivery channel. It is closed on Unsubscribe.
func (s *Subscription) Events() <-chan domain.Event { return s.ch }

// Global reports whether the subscription receives events for every entity.
func (s *Subscription) Global() bool { return len(s.scope) == 0 }

func (s *Subscription) wants(ev domain.Event) bool {
	if s.Global() || ev.EntityID == "" {
		return true
	}
	_, ok := s.scope[ev.EntityID]
	return ok
}

// Bus is an in-process publish/subscribe hub.
//
// Publish never blocks: each subscriber has a bounded buffer and an event that
// does not fit is dropped for that subscriber only. Publishing is serialized,
// so every subscriber observes events in the same order.
type Bus struct {
	buffer  int
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics

	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]*Subscription
}

// New creates a bus whose subscribers buffer up to buffer events.
func New(buffer int, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Bus {
	if buffer < 1 {
		buffer = 1
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Bus{
		buffer:  buffer,
		clock:   clock,
		logger:  logger,
		metrics: metrics,
		subs:    make(map[uint64]*Subscription),
	}
}

// Subscribe registers a subscriber. With no entity ids it receives every
// event; otherwise only events for the listed entities.
func (b *Bus) Subscribe(entityIDs ...string) *Subscription {
	sub := &Subscription{ch: make(chan domain.Event, b.buffer)}
	for _, id := range entityIDs {
		if id == "" {
			continue
		}
		if sub.scope == nil {
			sub.scope = make(map[string]struct{}, len(entityIDs))
		}
		sub.scope[id] = struct{}{}
	}

	b.mu.Lock()
	b.nextID++
	sub.id = b.nextID
	b.subs[sub.id] = sub
	n := len(b.subs)
	b.mu.Unlock()

	b.metrics.ActiveSubscribers.Set(float64(n))
	b.logger.Debug("subscriber connected", "subscriber", sub.id, "global", sub.Global())
	return sub
}

// Unsubscribe removes the subscriber and closes its channel. It is safe to
// call more than once.
func (b *Bus) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	if _, ok := b.subs[sub.id]; !ok {
		b.mu.Unlock()
		return
	}
	delete(b.subs, sub.id)
	close(sub.ch)
	n := len(b.subs)
	b.mu.Unlock()

	b.metrics.ActiveSubscribers.Set(float64(n))
	b.logger.Debug("subscriber disconnected", "subscriber", sub.id)
}

// Publish delivers ev to every interested subscriber currently registered.
// With no subscribers it is a no-op.
func (b *Bus) Publish(ev domain.Event) {
	if ev.PublishedAt.IsZero() {
		ev.PublishedAt = b.clock.Now()
	}
	b.metrics.EventsPublished.WithLabelValues(ev.Topic).Inc()

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subs {
		if !sub.wants(ev) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			b.metrics.EventsDropped.Inc()
			b.logger.Warn("subscriber buffer full, dropping event",
				"subscriber", sub.id,
				"topic", ev.Topic,
				"entity_id", ev.EntityID,
			)
		}
	}
}

// Subscribers returns the number of connected subscribers.
func (b *Bus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
