package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/streamtrack/internal/core/domain"
	"github.com/custodia-labs/streamtrack/internal/core/ports/driven"
)

// Ensure StreamStatusAPI implements the interfaces.
var (
	_ driven.StreamStatusAPI    = (*StreamStatusAPI)(nil)
	_ driven.StreamStatusLister = (*StreamStatusAPI)(nil)
)

// StreamStatusAPI is an in-memory implementation of the stream status service.
// It enforces one entity per stream and attempt, like the remote service.
type StreamStatusAPI struct {
	mu       sync.RWMutex
	statuses map[string]domain.StreamStatus
}

// NewStreamStatusAPI creates an empty in-memory status service.
func NewStreamStatusAPI() *StreamStatusAPI {
	return &StreamStatusAPI{
		statuses: make(map[string]domain.StreamStatus),
	}
}

// CreateStreamStatus stores a new entity with a generated id.
func (a *StreamStatusAPI) CreateStreamStatus(
	_ context.Context,
	req domain.StreamStatusCreateRequest,
) (*domain.StreamStatus, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, existing := range a.statuses {
		if existing.JobID == req.JobID &&
			existing.AttemptNumber == req.AttemptNumber &&
			existing.Key() == domain.NewStreamKey(req.StreamNamespace, req.StreamName) {
			return nil, fmt.Errorf("creating stream status %s: %w: already exists",
				existing.Key(), domain.ErrInvalidInput)
		}
	}

	status := fromRequest(uuid.NewString(), req)
	a.statuses[status.ID] = status
	return &status, nil
}

// UpdateStreamStatus replaces the entity identified by req.ID.
func (a *StreamStatusAPI) UpdateStreamStatus(
	_ context.Context,
	req domain.StreamStatusUpdateRequest,
) (*domain.StreamStatus, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.statuses[req.ID]; !ok {
		return nil, fmt.Errorf("updating stream status %s: %w", req.ID, domain.ErrNotFound)
	}

	status := fromRequest(req.ID, req.StreamStatusCreateRequest)
	a.statuses[status.ID] = status
	return &status, nil
}

// ListStreamStatuses returns the entities for jobID ordered by attempt and stream.
func (a *StreamStatusAPI) ListStreamStatuses(_ context.Context, jobID int64) ([]domain.StreamStatus, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var result []domain.StreamStatus
	for _, status := range a.statuses {
		if status.JobID == jobID {
			result = append(result, status)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].AttemptNumber != result[j].AttemptNumber {
			return result[i].AttemptNumber < result[j].AttemptNumber
		}
		if result[i].StreamNamespace != result[j].StreamNamespace {
			return result[i].StreamNamespace < result[j].StreamNamespace
		}
		return result[i].StreamName < result[j].StreamName
	})
	return result, nil
}

func fromRequest(id string, req domain.StreamStatusCreateRequest) domain.StreamStatus {
	return domain.StreamStatus{
		ID:                 id,
		WorkspaceID:        req.WorkspaceID,
		ConnectionID:       req.ConnectionID,
		JobID:              req.JobID,
		JobType:            req.JobType,
		AttemptNumber:      req.AttemptNumber,
		StreamNamespace:    req.StreamNamespace,
		StreamName:         req.StreamName,
		RunState:           req.RunState,
		IncompleteRunCause: req.IncompleteRunCause,
		Metadata:           req.Metadata.Clone(),
		TransitionedAt:     req.TransitionedAt,
	}
}
