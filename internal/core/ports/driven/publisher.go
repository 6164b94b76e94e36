package driven

import (
	"context"

	"github.com/custodia-labs/streamtrack/internal/core/domain"
)

// StatusUpdatePublisher delivers run-state change notifications.
//
// Publish is called while the tracker holds the stream's lock, so
// implementations see the events of one stream in dispatch order.
type StatusUpdatePublisher interface {
	Publish(ctx context.Context, event domain.StreamStatusUpdateEvent) error
}

// PublisherFunc adapts a function to StatusUpdatePublisher.
type PublisherFunc func(ctx context.Context, event domain.StreamStatusUpdateEvent) error

// Publish calls f.
func (f PublisherFunc) Publish(ctx context.Context, event domain.StreamStatusUpdateEvent) error {
	return f(ctx, event)
}
