package services

import (
	"github.com/custodia-labs/streamtrack/internal/core/domain"
	"github.com/custodia-labs/streamtrack/internal/core/ports/driven"
	"github.com/custodia-labs/streamtrack/internal/core/ports/driving"
	"github.com/custodia-labs/streamtrack/internal/logger"
)

// Ensure TrackerFactory implements the interface.
var _ driving.TrackerFactory = (*TrackerFactory)(nil)

// TrackerFactory builds a tracker, a store and a status cache for every sync.
// Only the publisher is shared between the trackers it creates.
type TrackerFactory struct {
	newStore  func() driven.StreamStatusStore
	publisher driven.StatusUpdatePublisher
}

// NewTrackerFactory creates a factory. newStore must return a fresh store on
// every call.
func NewTrackerFactory(newStore func() driven.StreamStatusStore, publisher driven.StatusUpdatePublisher) *TrackerFactory {
	return &TrackerFactory{
		newStore:  newStore,
		publisher: publisher,
	}
}

// Create returns a tracker bound to sync.
func (f *TrackerFactory) Create(sync domain.SyncContext) driving.StreamStatusTracker {
	logger.Debug("creating stream status tracker for %s", sync)
	return NewStreamStatusTracker(f.newStore(), f.publisher, sync)
}
