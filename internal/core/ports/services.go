package ports

import (
	"context"

	"github.com/samirrijal/formhunt/internal/core/domain"
)

// EventPublisher publishes lookup events to a message broker.
type EventPublisher interface {
	PublishLookup(ctx context.Context, event *domain.LookupEvent) error
}

// EventSubscriber receives lookup events from a message broker.
type EventSubscriber interface {
	SubscribeLookups(ctx context.Context, outcome string, handler func(ctx context.Context, event *domain.LookupEvent) error) error
}
