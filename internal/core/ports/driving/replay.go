package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/streamtrack/internal/core/domain"
)

// ReplayService drives a tracker from recorded source and destination output.
type ReplayService interface {
	// Replay tracks both message streams concurrently and finalises the sync.
	Replay(ctx context.Context, req ReplayRequest) (*ReplayResult, error)
}

// ReplayRequest describes one sync to replay.
type ReplayRequest struct {
	// Sync identifies the sync execution.
	Sync domain.SyncContext

	// Source is the source connector's protocol output.
	Source io.Reader

	// Destination is the destination connector's protocol output. Optional.
	Destination io.Reader
}

// ReplayResult summarises a replayed sync.
type ReplayResult struct {
	// Streams is the final status of every stream.
	Streams []domain.StreamStatusEntry

	// MessagesTracked counts messages handed to the tracker.
	MessagesTracked int

	// TrackErrors counts messages whose notification could not be delivered.
	TrackErrors int

	// Failed is true if a reader failed and open streams were forced INCOMPLETE.
	Failed bool
}
