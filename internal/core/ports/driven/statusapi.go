package driven

import (
	"context"

	"github.com/custodia-labs/streamtrack/internal/core/domain"
)

// StreamStatusAPI is the external stream status service.
// It offers separate create and update calls and no upsert.
type StreamStatusAPI interface {
	// CreateStreamStatus creates a status entity and returns it with its id.
	CreateStreamStatus(ctx context.Context, req domain.StreamStatusCreateRequest) (*domain.StreamStatus, error)

	// UpdateStreamStatus updates the entity identified by req.ID.
	UpdateStreamStatus(ctx context.Context, req domain.StreamStatusUpdateRequest) (*domain.StreamStatus, error)
}

// StreamStatusLister lists the status entities recorded for a job.
// Only local backends implement it.
type StreamStatusLister interface {
	// ListStreamStatuses returns every status recorded for jobID.
	ListStreamStatuses(ctx context.Context, jobID int64) ([]domain.StreamStatus, error)
}
