package services

import (
	"context"

	"github.com/custodia-labs/streamtrack/internal/core/domain"
	"github.com/custodia-labs/streamtrack/internal/core/ports/driven"
)

// Ensure StatusUpdateListener implements the interface.
var _ driven.StatusUpdatePublisher = (*StatusUpdateListener)(nil)

// StatusUpdateListener delivers tracker events to a StatusReconciler.
// Delivery is synchronous so the tracker's per-stream ordering carries
// through to the API.
type StatusUpdateListener struct {
	reconciler *StatusReconciler
}

// NewStatusUpdateListener creates a listener.
func NewStatusUpdateListener(reconciler *StatusReconciler) *StatusUpdateListener {
	return &StatusUpdateListener{reconciler: reconciler}
}

// Publish reconciles event with the status API.
func (l *StatusUpdateListener) Publish(ctx context.Context, event domain.StreamStatusUpdateEvent) error {
	return l.reconciler.Reconcile(ctx, event.Cache, event.Key, event.RunState, event.Metadata, event.Sync)
}
