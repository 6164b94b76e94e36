package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/streamtrack/internal/core/domain"
	"github.com/custodia-labs/streamtrack/internal/core/ports/driving"
)

const sourceOutput = `{"type":"TRACE","trace":{"type":"STREAM_STATUS","stream_status":{"stream_descriptor":{"name":"users"},"status":"STARTED"}}}
{"type":"RECORD","record":{"stream":"users","data":{"id":1}}}
{"type":"TRACE","trace":{"type":"STREAM_STATUS","stream_status":{"stream_descriptor":{"name":"users"},"status":"COMPLETE"}}}
{"type":"STATE","state":{"type":"STREAM","stream":{"stream_descriptor":{"name":"users"}},"id":1}}
`

const destinationOutput = `{"type":"STATE","state":{"type":"STREAM","stream":{"stream_descriptor":{"name":"users"}},"id":1}}
`

func testSync() domain.SyncContext {
	return domain.SyncContext{WorkspaceID: "ws", ConnectionID: "conn", JobID: 11, Attempt: 0}
}

func replay(t *testing.T, svc driving.ReplayService) *driving.ReplayResult {
	t.Helper()
	result, err := svc.Replay(context.Background(), driving.ReplayRequest{
		Sync:        testSync(),
		Source:      strings.NewReader(sourceOutput),
		Destination: strings.NewReader(destinationOutput),
	})
	require.NoError(t, err)
	return result
}

func TestLoadSettings(t *testing.T) {
	dir := t.TempDir()

	svc, err := loadSettings(dir)
	require.NoError(t, err)
	require.NoError(t, svc.SetBackend(domain.BackendMemory))

	reloaded, err := loadSettings(dir)
	require.NoError(t, err)
	settings, err := reloaded.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.BackendMemory, settings.Backend)
}

func TestOpenRuntime_Memory(t *testing.T) {
	rt, err := openRuntime(domain.AppSettings{Backend: domain.BackendMemory})
	require.NoError(t, err)
	assert.Nil(t, rt.Close)
	require.NotNil(t, rt.Lister)

	result := replay(t, rt.Replay)
	require.Len(t, result.Streams, 1)
	assert.Equal(t, domain.RunStateComplete, result.Streams[0].Value.RunState)

	statuses, err := rt.Lister.ListStreamStatuses(context.Background(), 11)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, domain.RunStateComplete, statuses[0].RunState)

	path := filepath.Join(t.TempDir(), "streamtrack.prom")
	require.NoError(t, rt.Metrics.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `streamtrack_status_api_calls_total{operation="create",outcome="success"} 1`)
	assert.Contains(t, string(data), `streamtrack_status_api_calls_total{operation="update",outcome="success"} 1`)
}

func TestOpenRuntime_SQLite(t *testing.T) {
	settings := domain.AppSettings{
		Backend: domain.BackendSQLite,
		Storage: domain.StorageSettings{DataDir: t.TempDir()},
	}

	rt, err := openRuntime(settings)
	require.NoError(t, err)
	replay(t, rt.Replay)
	require.NoError(t, rt.Close())

	// A second runtime sees what the first recorded.
	reopened, err := openRuntime(settings)
	require.NoError(t, err)
	defer reopened.Close()

	statuses, err := reopened.Lister.ListStreamStatuses(context.Background(), 11)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, "users", statuses[0].StreamName)
	assert.Equal(t, domain.RunStateComplete, statuses[0].RunState)
}

func TestOpenRuntime_HTTP(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"status-1","streamName":"users","runState":"RUNNING","jobId":11}`))
	}))
	defer server.Close()

	rt, err := openRuntime(domain.AppSettings{
		Backend: domain.BackendHTTP,
		API:     domain.APISettings{BaseURL: server.URL, Token: "secret"},
	})
	require.NoError(t, err)
	assert.Nil(t, rt.Lister)

	replay(t, rt.Replay)
	assert.Equal(t, []string{"/v1/stream_statuses/create", "/v1/stream_statuses/update"}, paths)
}

func TestOpenRuntime_HTTPRequiresURL(t *testing.T) {
	_, err := openRuntime(domain.AppSettings{Backend: domain.BackendHTTP})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestOpenRuntime_Unsupported(t *testing.T) {
	_, err := openRuntime(domain.AppSettings{Backend: "kafka"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedBackend)
}
