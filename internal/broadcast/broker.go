// Package broadcast carries best-effort change notifications between the
// console and other open views. Delivery is never guaranteed: each update is
// a hint to re-read the canonical record, not an authoritative payload.
package broadcast

import (
	"context"
	"log/slog"
	"sync"

	"github.com/example/pricing-console/internal/application"
)

// Broker fans updates out to in-process subscribers. Sends never block: a
// subscriber that falls behind drops updates instead of stalling the writer.
type Broker struct {
	mu     sync.Mutex
	subs   map[int]chan application.PriceUpdate
	nextID int
	logger *slog.Logger
}

// NewBroker constructs an in-process broker.
func NewBroker(logger *slog.Logger) *Broker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broker{
		subs:   make(map[int]chan application.PriceUpdate),
		logger: logger,
	}
}

// Subscribe registers a listener and returns its channel plus a cancel
// function. The buffer bounds how many undelivered updates are retained.
func (b *Broker) Subscribe(buffer int) (<-chan application.PriceUpdate, func()) {
	if buffer <= 0 {
		buffer = 8
	}
	ch := make(chan application.PriceUpdate, buffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if existing, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(existing)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers the update to every subscriber that has room for it.
func (b *Broker) Publish(ctx context.Context, update application.PriceUpdate) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		select {
		case ch <- update:
		default:
			b.logger.DebugContext(ctx, "dropping update for slow subscriber",
				"subscriber", id, "room", update.RoomType, "update_id", update.ID)
		}
	}
}

// Fanout publishes each update through every wrapped publisher in order.
type Fanout []application.Publisher

// Publish implements application.Publisher.
func (f Fanout) Publish(ctx context.Context, update application.PriceUpdate) {
	for _, publisher := range f {
		if publisher != nil {
			publisher.Publish(ctx, update)
		}
	}
}
