package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/streamtrack/internal/core/domain"
	"github.com/custodia-labs/streamtrack/internal/core/ports/driven"
)

// Ensure StatusLedger implements the interfaces.
var (
	_ driven.StreamStatusAPI    = (*StatusLedger)(nil)
	_ driven.StreamStatusLister = (*StatusLedger)(nil)
)

const statusColumns = `id, workspace_id, connection_id, job_id, job_type, attempt_number,
	stream_namespace, stream_name, run_state, incomplete_run_cause, metadata, transitioned_at`

// StatusLedger records stream status entities locally.
type StatusLedger struct {
	store *Store
}

// CreateStreamStatus inserts a new entity. Creating a second entity for the
// same stream and attempt fails, as it does on the remote service.
func (l *StatusLedger) CreateStreamStatus(
	ctx context.Context,
	req domain.StreamStatusCreateRequest,
) (*domain.StreamStatus, error) {
	metadata, err := encodeMetadata(req.Metadata)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	_, err = l.store.db.ExecContext(ctx, `
		INSERT INTO stream_statuses (`+statusColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, req.WorkspaceID, req.ConnectionID, req.JobID, string(req.JobType), req.AttemptNumber,
		req.StreamNamespace, req.StreamName, string(req.RunState),
		nullString(string(req.IncompleteRunCause)), metadata, req.TransitionedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("creating stream status %s: %w: already exists", streamLabel(req), domain.ErrInvalidInput)
		}
		return nil, fmt.Errorf("creating stream status: %w", err)
	}

	return l.get(ctx, id)
}

// UpdateStreamStatus replaces the mutable fields of an existing entity.
func (l *StatusLedger) UpdateStreamStatus(
	ctx context.Context,
	req domain.StreamStatusUpdateRequest,
) (*domain.StreamStatus, error) {
	metadata, err := encodeMetadata(req.Metadata)
	if err != nil {
		return nil, err
	}

	result, err := l.store.db.ExecContext(ctx, `
		UPDATE stream_statuses SET
			job_type = ?,
			run_state = ?,
			incomplete_run_cause = ?,
			metadata = ?,
			transitioned_at = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, string(req.JobType), string(req.RunState), nullString(string(req.IncompleteRunCause)),
		metadata, req.TransitionedAt, req.ID)
	if err != nil {
		return nil, fmt.Errorf("updating stream status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("updating stream status: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("updating stream status %s: %w", req.ID, domain.ErrNotFound)
	}

	return l.get(ctx, req.ID)
}

// ListStreamStatuses returns every entity recorded for jobID, ordered by
// attempt and stream.
func (l *StatusLedger) ListStreamStatuses(ctx context.Context, jobID int64) ([]domain.StreamStatus, error) {
	rows, err := l.store.db.QueryContext(ctx, `
		SELECT `+statusColumns+`
		FROM stream_statuses
		WHERE job_id = ?
		ORDER BY attempt_number, stream_namespace, stream_name
	`, jobID)
	if err != nil {
		return nil, fmt.Errorf("listing stream statuses: %w", err)
	}
	defer rows.Close()

	var statuses []domain.StreamStatus
	for rows.Next() {
		status, err := scanStatus(rows)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, *status)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing stream statuses: %w", err)
	}
	return statuses, nil
}

func (l *StatusLedger) get(ctx context.Context, id string) (*domain.StreamStatus, error) {
	row := l.store.db.QueryRowContext(ctx, `SELECT `+statusColumns+` FROM stream_statuses WHERE id = ?`, id)
	status, err := scanStatus(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("stream status %s: %w", id, domain.ErrNotFound)
	}
	return status, err
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanStatus(row rowScanner) (*domain.StreamStatus, error) {
	var (
		status   domain.StreamStatus
		jobType  string
		runState string
		cause    sql.NullString
		metadata sql.NullString
	)

	err := row.Scan(&status.ID, &status.WorkspaceID, &status.ConnectionID, &status.JobID, &jobType,
		&status.AttemptNumber, &status.StreamNamespace, &status.StreamName, &runState, &cause,
		&metadata, &status.TransitionedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning stream status: %w", err)
	}

	status.JobType = domain.JobType(jobType)
	status.RunState = domain.RunState(runState)
	status.IncompleteRunCause = domain.IncompleteRunCause(cause.String)

	if metadata.Valid && metadata.String != "" {
		var md domain.RateLimitedMetadata
		if err := json.Unmarshal([]byte(metadata.String), &md); err != nil {
			return nil, fmt.Errorf("unmarshalling metadata: %w", err)
		}
		status.Metadata = &md
	}

	return &status, nil
}

func encodeMetadata(md *domain.RateLimitedMetadata) (sql.NullString, error) {
	if md == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(md)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshalling metadata: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func streamLabel(req domain.StreamStatusCreateRequest) string {
	return domain.NewStreamKey(req.StreamNamespace, req.StreamName).String()
}
