package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/im7mortal/kmutex"

	"github.com/custodia-labs/streamtrack/internal/core/domain"
	"github.com/custodia-labs/streamtrack/internal/core/ports/driven"
	"github.com/custodia-labs/streamtrack/internal/core/ports/driving"
	"github.com/custodia-labs/streamtrack/internal/logger"
)

// Ensure StreamStatusTracker implements the interface.
var _ driving.StreamStatusTracker = (*StreamStatusTracker)(nil)

// StreamStatusTracker derives stream run-states from protocol messages.
//
// Each stream key has its own lock, held across the store mutation and the
// publish that follows it. Events for one stream are therefore applied and
// published in dispatch order while unrelated streams proceed in parallel.
type StreamStatusTracker struct {
	store     driven.StreamStatusStore
	publisher driven.StatusUpdatePublisher
	sync      domain.SyncContext
	cache     *domain.StatusCache
	locks     *kmutex.Kmutex
}

// NewStreamStatusTracker creates a tracker for one sync.
func NewStreamStatusTracker(
	store driven.StreamStatusStore,
	publisher driven.StatusUpdatePublisher,
	sync domain.SyncContext,
) *StreamStatusTracker {
	return &StreamStatusTracker{
		store:     store,
		publisher: publisher,
		sync:      sync,
		cache:     domain.NewStatusCache(),
		locks:     kmutex.New(),
	}
}

// Track applies one message.
func (t *StreamStatusTracker) Track(ctx context.Context, origin domain.MessageOrigin, msg domain.Message) error {
	if msg == nil {
		return fmt.Errorf("track: %w: nil message", domain.ErrUnsupportedMessage)
	}

	key, ok := msg.Stream()
	if !ok {
		return t.trackGlobal(ctx, origin, msg)
	}
	return t.trackStream(ctx, origin, key, msg)
}

// ForceTerminal moves every non-terminal stream to runState.
func (t *StreamStatusTracker) ForceTerminal(ctx context.Context, runState domain.RunState) error {
	if !runState.IsTerminal() {
		return fmt.Errorf("force terminal: %w: %s is not terminal", domain.ErrInvalidInput, runState)
	}

	var errs []error
	for _, entry := range t.store.Entries() {
		if entry.Value.RunState.IsTerminal() {
			continue
		}
		logger.Debug("forcing %s to %s (%s)", entry.Key, runState, t.sync)
		if err := t.transition(ctx, entry.Key, runState); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Statuses returns a snapshot of every tracked stream.
func (t *StreamStatusTracker) Statuses() []domain.StreamStatusEntry {
	return t.store.Entries()
}

// SyncContext returns the sync the tracker belongs to.
func (t *StreamStatusTracker) SyncContext() domain.SyncContext {
	return t.sync
}

// Cache returns the per-sync cache of reported status entities.
func (t *StreamStatusTracker) Cache() *domain.StatusCache {
	return t.cache
}

func (t *StreamStatusTracker) trackStream(
	ctx context.Context,
	origin domain.MessageOrigin,
	key domain.StreamKey,
	msg domain.Message,
) error {
	t.locks.Lock(key)
	defer t.locks.Unlock(key)

	switch m := msg.(type) {
	case domain.RecordMessage:
		return t.trackRecord(ctx, key)
	case domain.StreamStatusMessage:
		return t.trackStatusSignal(ctx, key, m)
	case domain.StateMessage:
		return t.trackStreamState(ctx, origin, key, m)
	default:
		logger.Debug("ignoring %T from %s for %s", msg, origin, key)
		return nil
	}
}

func (t *StreamStatusTracker) trackRecord(ctx context.Context, key domain.StreamKey) error {
	if t.store.IsRateLimited(key) {
		t.store.SetMetadata(key, nil)
	}
	value, changed := t.store.SetRunState(key, domain.RunStateRunning)
	t.store.MarkStreamNotEmpty(key)

	if !changed {
		return nil
	}
	return t.publish(ctx, key, value)
}

func (t *StreamStatusTracker) trackStatusSignal(
	ctx context.Context,
	key domain.StreamKey,
	msg domain.StreamStatusMessage,
) error {
	switch msg.Status {
	case domain.SignalStarted, domain.SignalRunning:
		if metadata, ok := msg.RateLimited(); ok {
			_, changed := t.store.SetRunState(key, domain.RunStateRateLimited)
			value := t.store.SetMetadata(key, metadata)
			if !changed {
				return nil
			}
			return t.publish(ctx, key, value)
		}
		return t.setRunState(ctx, key, domain.RunStateRunning)
	case domain.SignalIncomplete:
		return t.setRunState(ctx, key, domain.RunStateIncomplete)
	case domain.SignalComplete:
		t.store.MarkSourceComplete(key)
		return nil
	default:
		logger.Debug("ignoring stream status %q for %s", msg.Status, key)
		return nil
	}
}

func (t *StreamStatusTracker) trackStreamState(
	ctx context.Context,
	origin domain.MessageOrigin,
	key domain.StreamKey,
	msg domain.StateMessage,
) error {
	if msg.ID == nil {
		logger.Debug("ignoring state without id from %s for %s", origin, key)
		return nil
	}

	id := *msg.ID
	if t.store.IsStreamComplete(key, id) {
		logger.Debug("checkpoint %d completes %s", id, key)
		return t.setRunState(ctx, key, domain.RunStateComplete)
	}
	t.store.SetLatestStateID(key, id)
	return nil
}

func (t *StreamStatusTracker) trackGlobal(ctx context.Context, origin domain.MessageOrigin, msg domain.Message) error {
	state, ok := msg.(domain.StateMessage)
	if !ok || state.Type != domain.StateTypeGlobal {
		logger.Debug("ignoring %T from %s", msg, origin)
		return nil
	}
	if state.ID == nil {
		logger.Debug("ignoring global state without id from %s", origin)
		return nil
	}

	id := *state.ID
	t.store.SetLatestGlobalStateID(id)
	if !t.store.IsGlobalComplete(id) {
		return nil
	}

	logger.Debug("global checkpoint %d completes sync %s", id, t.sync)

	var errs []error
	for _, entry := range t.store.Entries() {
		if !entry.Value.SourceComplete {
			continue
		}
		if err := t.transition(ctx, entry.Key, domain.RunStateComplete); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// transition takes the key lock and offers runState.
func (t *StreamStatusTracker) transition(ctx context.Context, key domain.StreamKey, runState domain.RunState) error {
	t.locks.Lock(key)
	defer t.locks.Unlock(key)
	return t.setRunState(ctx, key, runState)
}

// setRunState must be called with the key lock held.
func (t *StreamStatusTracker) setRunState(ctx context.Context, key domain.StreamKey, runState domain.RunState) error {
	value, changed := t.store.SetRunState(key, runState)
	if !changed {
		return nil
	}
	return t.publish(ctx, key, value)
}

func (t *StreamStatusTracker) publish(ctx context.Context, key domain.StreamKey, value domain.StreamStatusValue) error {
	logger.Debug("%s -> %s (%s)", key, value.RunState, t.sync)

	event := domain.StreamStatusUpdateEvent{
		Cache:    t.cache,
		Key:      key,
		RunState: value.RunState,
		Metadata: value.Metadata.Clone(),
		Sync:     t.sync,
	}
	if err := t.publisher.Publish(ctx, event); err != nil {
		return fmt.Errorf("publish %s %s: %w", key, value.RunState, err)
	}
	return nil
}
