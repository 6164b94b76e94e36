package services

import (
	"context"
	"fmt"

	"github.com/juju/clock"

	"github.com/custodia-labs/streamtrack/internal/core/domain"
	"github.com/custodia-labs/streamtrack/internal/core/ports/driven"
	"github.com/custodia-labs/streamtrack/internal/logger"
)

// StatusReconciler mirrors run-state changes to the stream status API.
//
// The API has separate create and update calls. The per-sync cache records
// the last entity the API confirmed for each stream and decides which call,
// if any, a change needs. Failed calls leave the cache untouched and are not
// retried here.
type StatusReconciler struct {
	api   driven.StreamStatusAPI
	clock clock.Clock
}

// NewStatusReconciler creates a reconciler. A nil clock uses the wall clock.
func NewStatusReconciler(api driven.StreamStatusAPI, clk clock.Clock) *StatusReconciler {
	if clk == nil {
		clk = clock.WallClock
	}
	return &StatusReconciler{
		api:   api,
		clock: clk,
	}
}

// Reconcile creates, updates or skips the status entity for key.
func (r *StatusReconciler) Reconcile(
	ctx context.Context,
	cache *domain.StatusCache,
	key domain.StreamKey,
	runState domain.RunState,
	metadata *domain.RateLimitedMetadata,
	sync domain.SyncContext,
) error {
	if cache == nil {
		return fmt.Errorf("reconcile %s: %w: nil cache", key, domain.ErrInvalidInput)
	}

	req := r.request(key, runState, metadata, sync)

	existing, ok := cache.Get(key)
	if !ok {
		logger.Debug("creating stream status %s %s", key, runState)
		created, err := r.api.CreateStreamStatus(ctx, req)
		if err != nil {
			return fmt.Errorf("create stream status %s: %w", key, err)
		}
		if created == nil {
			return fmt.Errorf("create stream status %s: %w: empty response", key, domain.ErrStatusAPI)
		}
		cache.Put(key, *created)
		return nil
	}

	if existing.RunState == runState {
		logger.Debug("stream status %s already %s", key, runState)
		return nil
	}

	logger.Debug("updating stream status %s %s -> %s", key, existing.RunState, runState)
	updated, err := r.api.UpdateStreamStatus(ctx, domain.StreamStatusUpdateRequest{
		ID:                        existing.ID,
		StreamStatusCreateRequest: req,
	})
	if err != nil {
		return fmt.Errorf("update stream status %s: %w", key, err)
	}
	if updated == nil {
		return fmt.Errorf("update stream status %s: %w: empty response", key, domain.ErrStatusAPI)
	}
	cache.Put(key, *updated)
	return nil
}

func (r *StatusReconciler) request(
	key domain.StreamKey,
	runState domain.RunState,
	metadata *domain.RateLimitedMetadata,
	sync domain.SyncContext,
) domain.StreamStatusCreateRequest {
	req := domain.StreamStatusCreateRequest{
		WorkspaceID:     sync.WorkspaceID,
		ConnectionID:    sync.ConnectionID,
		JobID:           sync.JobID,
		JobType:         sync.JobType(),
		AttemptNumber:   sync.Attempt,
		StreamNamespace: key.Namespace,
		StreamName:      key.Name,
		RunState:        runState,
		Metadata:        metadata.Clone(),
		TransitionedAt:  r.clock.Now().UnixMilli(),
	}
	if runState == domain.RunStateIncomplete {
		req.IncompleteRunCause = domain.IncompleteCauseFailed
	}
	return req
}
