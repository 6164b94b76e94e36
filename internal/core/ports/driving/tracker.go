package driving

import (
	"context"

	"github.com/custodia-labs/streamtrack/internal/core/domain"
)

// StreamStatusTracker turns the protocol messages of one sync into stream
// run-states and notifies when a stream's run-state changes.
type StreamStatusTracker interface {
	// Track applies one message. It is safe to call from the source and the
	// destination readers concurrently. Errors come from notification delivery.
	Track(ctx context.Context, origin domain.MessageOrigin, msg domain.Message) error

	// ForceTerminal moves every stream that is not yet terminal to runState,
	// which must be COMPLETE or INCOMPLETE.
	ForceTerminal(ctx context.Context, runState domain.RunState) error

	// Statuses returns a snapshot of every tracked stream.
	Statuses() []domain.StreamStatusEntry

	// SyncContext returns the sync the tracker belongs to.
	SyncContext() domain.SyncContext
}

// TrackerFactory creates one isolated tracker per sync execution.
type TrackerFactory interface {
	Create(sync domain.SyncContext) StreamStatusTracker
}
