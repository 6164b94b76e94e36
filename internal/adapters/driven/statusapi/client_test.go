package statusapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/streamtrack/internal/core/domain"
)

func createRequest() domain.StreamStatusCreateRequest {
	return domain.StreamStatusCreateRequest{
		WorkspaceID:        "ws-1",
		ConnectionID:       "conn-1",
		JobID:              42,
		JobType:            domain.JobTypeSync,
		AttemptNumber:      1,
		StreamName:         "users",
		RunState:           domain.RunStateIncomplete,
		IncompleteRunCause: domain.IncompleteCauseFailed,
		TransitionedAt:     1700000000000,
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc, cfg Config) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg.BaseURL = server.URL + "/api/"
	client, err := NewClient(context.Background(), cfg)
	require.NoError(t, err)
	return client
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	client, err := NewClient(context.Background(), Config{})

	assert.Nil(t, client)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNewClient_DoesNotMutateInjectedClient(t *testing.T) {
	injected := &http.Client{}

	_, err := NewClient(context.Background(), Config{BaseURL: "http://x", HTTPClient: injected, Timeout: time.Second})

	require.NoError(t, err)
	assert.Zero(t, injected.Timeout)
}

func TestClient_CreateStreamStatus(t *testing.T) {
	var gotBody map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/stream_statuses/create", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"status-1","workspaceId":"ws-1","connectionId":"conn-1","jobId":42,` +
			`"jobType":"SYNC","attemptNumber":1,"streamName":"users","runState":"INCOMPLETE",` +
			`"incompleteRunCause":"FAILED","transitionedAt":1700000000000}`))
	}, Config{Token: "secret"})

	status, err := client.CreateStreamStatus(context.Background(), createRequest())

	require.NoError(t, err)
	assert.Equal(t, "status-1", status.ID)
	assert.Equal(t, domain.RunStateIncomplete, status.RunState)
	assert.Equal(t, domain.IncompleteCauseFailed, status.IncompleteRunCause)
	assert.Equal(t, domain.NewStreamKey("", "users"), status.Key())

	assert.Equal(t, "ws-1", gotBody["workspaceId"])
	assert.Equal(t, "INCOMPLETE", gotBody["runState"])
	assert.Equal(t, "FAILED", gotBody["incompleteRunCause"])
	assert.Equal(t, float64(42), gotBody["jobId"])
	assert.NotContains(t, gotBody, "streamNamespace")
	assert.NotContains(t, gotBody, "metadata")
}

func TestClient_UpdateStreamStatus(t *testing.T) {
	var gotBody map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/stream_statuses/update", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"id":"status-1","runState":"RATE_LIMITED","metadata":{"quotaReset":99}}`))
	}, Config{})

	req := domain.StreamStatusUpdateRequest{ID: "status-1", StreamStatusCreateRequest: createRequest()}
	req.RunState = domain.RunStateRateLimited
	req.IncompleteRunCause = ""
	req.Metadata = &domain.RateLimitedMetadata{QuotaReset: func() *int64 { v := int64(99); return &v }()}

	status, err := client.UpdateStreamStatus(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, domain.RunStateRateLimited, status.RunState)
	require.NotNil(t, status.Metadata)
	assert.Equal(t, int64(99), *status.Metadata.QuotaReset)

	assert.Equal(t, "status-1", gotBody["id"])
	assert.Equal(t, map[string]any{"quotaReset": float64(99)}, gotBody["metadata"])
}

func TestClient_UpdateStreamStatus_RequiresID(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}, Config{})

	_, err := client.UpdateStreamStatus(context.Background(), domain.StreamStatusUpdateRequest{})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, calls.Load())
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		check   func(error) bool
		message string
	}{
		{"not found", http.StatusNotFound, `{"message":"stream status not found"}`, IsNotFound, "stream status not found"},
		{"unauthorized", http.StatusUnauthorized, `bad token`, IsUnauthorized, "bad token"},
		{"forbidden", http.StatusForbidden, ``, IsForbidden, "403 Forbidden"},
		{"invalid", http.StatusUnprocessableEntity, `{"message":"runState is invalid"}`, IsInvalidRequest, "runState is invalid"},
		{"server error", http.StatusInternalServerError, `{"error":"x"}`, func(err error) bool { return !IsNotFound(err) }, `{"error":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}, Config{})

			status, err := client.CreateStreamStatus(context.Background(), createRequest())

			assert.Nil(t, status)
			require.Error(t, err)
			assert.True(t, tt.check(err))
			assert.ErrorIs(t, err, domain.ErrStatusAPI)
			assert.Contains(t, err.Error(), tt.message)
			assert.False(t, IsRateLimited(err))
		})
	}
}

func TestClient_RateLimited(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}, Config{})

	before := time.Now()
	_, err := client.CreateStreamStatus(context.Background(), createRequest())

	require.Error(t, err)
	assert.True(t, IsRateLimited(err))
	assert.ErrorIs(t, err, domain.ErrStatusAPI)

	var rlErr *RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.WithinDuration(t, before.Add(30*time.Second), rlErr.RetryAt, 5*time.Second)
}

func TestClient_MalformedResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}, Config{})

	_, err := client.CreateStreamStatus(context.Background(), createRequest())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestClient_ThrottlesRequests(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"id":"status-1"}`))
	}, Config{RateLimit: 20})

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := client.CreateStreamStatus(context.Background(), createRequest())
		require.NoError(t, err)
	}

	assert.Equal(t, int32(3), calls.Load())
	// burst of one, then 50ms per request
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestClient_CanceledContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"status-1"}`))
	}, Config{RateLimit: 0.001})

	// drain the burst
	_, err := client.CreateStreamStatus(context.Background(), createRequest())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = client.CreateStreamStatus(ctx, createRequest())

	assert.Error(t, err)
}

func TestClient_Timeout(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}, Config{Timeout: 20 * time.Millisecond})

	_, err := client.CreateStreamStatus(context.Background(), createRequest())

	assert.Error(t, err)
}
