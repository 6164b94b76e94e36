package domain

import "fmt"

// JobType distinguishes regular syncs from resets.
type JobType string

// Job types understood by the stream status API.
const (
	JobTypeSync  JobType = "SYNC"
	JobTypeReset JobType = "RESET"
)

// SyncContext identifies the sync execution a tracker belongs to.
// It is opaque to the tracker and forwarded on every notification.
type SyncContext struct {
	// WorkspaceID owns the connection.
	WorkspaceID string

	// ConnectionID identifies the source → destination pipeline.
	ConnectionID string

	// JobID identifies the job.
	JobID int64

	// Attempt is the attempt number within the job.
	Attempt int

	// IsReset is true when the job clears destination data instead of syncing.
	IsReset bool
}

// JobType returns RESET for reset jobs and SYNC otherwise.
func (c SyncContext) JobType() JobType {
	if c.IsReset {
		return JobTypeReset
	}
	return JobTypeSync
}

// Validate checks that the identifiers needed by the status API are present.
func (c SyncContext) Validate() error {
	if c.WorkspaceID == "" {
		return fmt.Errorf("%w: workspace id is required", ErrInvalidInput)
	}
	if c.ConnectionID == "" {
		return fmt.Errorf("%w: connection id is required", ErrInvalidInput)
	}
	if c.JobID <= 0 {
		return fmt.Errorf("%w: job id must be positive", ErrInvalidInput)
	}
	if c.Attempt < 0 {
		return fmt.Errorf("%w: attempt must not be negative", ErrInvalidInput)
	}
	return nil
}

// String renders the identifying fields for log output.
func (c SyncContext) String() string {
	return fmt.Sprintf("workspace=%s connection=%s job=%d attempt=%d", c.WorkspaceID, c.ConnectionID, c.JobID, c.Attempt)
}
