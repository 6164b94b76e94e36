package metrics

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/streamtrack/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/streamtrack/internal/core/domain"
)

type publisherFunc func(context.Context, domain.StreamStatusUpdateEvent) error

func (f publisherFunc) Publish(ctx context.Context, event domain.StreamStatusUpdateEvent) error {
	return f(ctx, event)
}

func createRequest(name string) domain.StreamStatusCreateRequest {
	return domain.StreamStatusCreateRequest{
		WorkspaceID:  "ws",
		ConnectionID: "conn",
		JobID:        1,
		JobType:      domain.JobTypeSync,
		StreamName:   name,
		RunState:     domain.RunStateRunning,
	}
}

func TestCollector_InstrumentAPI(t *testing.T) {
	c := NewCollector()
	api := c.InstrumentAPI(memory.NewStreamStatusAPI())
	ctx := context.Background()

	created, err := api.CreateStreamStatus(ctx, createRequest("users"))
	require.NoError(t, err)

	_, err = api.CreateStreamStatus(ctx, createRequest("users"))
	require.Error(t, err)

	_, err = api.UpdateStreamStatus(ctx, domain.StreamStatusUpdateRequest{
		ID:                        created.ID,
		StreamStatusCreateRequest: createRequest("users"),
	})
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.apiCalls.WithLabelValues(opCreate, "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.apiCalls.WithLabelValues(opCreate, "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.apiCalls.WithLabelValues(opUpdate, "success")))
	assert.Equal(t, 2, testutil.CollectAndCount(c.apiDuration))
}

func TestCollector_InstrumentPublisher(t *testing.T) {
	c := NewCollector()
	failure := errors.New("api down")

	var delivered []domain.RunState
	publisher := c.InstrumentPublisher(publisherFunc(func(_ context.Context, e domain.StreamStatusUpdateEvent) error {
		delivered = append(delivered, e.RunState)
		if e.RunState == domain.RunStateIncomplete {
			return failure
		}
		return nil
	}))

	ctx := context.Background()
	require.NoError(t, publisher.Publish(ctx, domain.StreamStatusUpdateEvent{RunState: domain.RunStateRunning}))
	require.NoError(t, publisher.Publish(ctx, domain.StreamStatusUpdateEvent{RunState: domain.RunStateComplete}))
	assert.ErrorIs(t, publisher.Publish(ctx, domain.StreamStatusUpdateEvent{RunState: domain.RunStateIncomplete}), failure)

	assert.Equal(t, []domain.RunState{domain.RunStateRunning, domain.RunStateComplete, domain.RunStateIncomplete}, delivered)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.transitions.WithLabelValues("RUNNING")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.transitions.WithLabelValues("INCOMPLETE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.publishErrors))
}

func TestCollector_WriteTextfile(t *testing.T) {
	c := NewCollector()
	c.transitions.WithLabelValues("COMPLETE").Inc()

	path := filepath.Join(t.TempDir(), "streamtrack.prom")
	require.NoError(t, c.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `streamtrack_run_state_transitions_total{run_state="COMPLETE"} 1`)
}

func TestCollector_Registry(t *testing.T) {
	c := NewCollector()
	c.publishErrors.Inc()

	count, err := testutil.GatherAndCount(c.Registry(), "streamtrack_publish_errors_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
