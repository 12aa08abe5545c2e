package ports

import (
	"context"

	"github.com/marketly/storefront/internal/core/domain"
)

// EventPublisher delivers order events to the outside world.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.OrderEvent) error
}

// EventSink accepts order events for asynchronous delivery. Enqueue must not
// block the caller for long.
type EventSink interface {
	Enqueue(event domain.OrderEvent)
}
