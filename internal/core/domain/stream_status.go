package domain

import (
	"sync"
	"time"
)

// IncompleteRunCause explains why a stream ended INCOMPLETE.
type IncompleteRunCause string

// Incomplete causes.
const (
	IncompleteCauseFailed   IncompleteRunCause = "FAILED"
	IncompleteCauseCanceled IncompleteRunCause = "CANCELED"
)

// StreamStatus is the status entity owned by the stream status API.
type StreamStatus struct {
	// ID is assigned by the API on create.
	ID string `json:"id"`

	WorkspaceID     string  `json:"workspaceId"`
	ConnectionID    string  `json:"connectionId"`
	JobID           int64   `json:"jobId"`
	JobType         JobType `json:"jobType"`
	AttemptNumber   int     `json:"attemptNumber"`
	StreamNamespace string  `json:"streamNamespace,omitempty"`
	StreamName      string  `json:"streamName"`

	RunState           RunState             `json:"runState"`
	IncompleteRunCause IncompleteRunCause   `json:"incompleteRunCause,omitempty"`
	Metadata           *RateLimitedMetadata `json:"metadata,omitempty"`

	// TransitionedAt is the epoch millisecond timestamp of the last transition.
	TransitionedAt int64 `json:"transitionedAt"`
}

// Key returns the stream the entity describes.
func (s StreamStatus) Key() StreamKey {
	return StreamKey{Namespace: s.StreamNamespace, Name: s.StreamName}
}

// Transitioned returns TransitionedAt as a time.
func (s StreamStatus) Transitioned() time.Time {
	return time.UnixMilli(s.TransitionedAt)
}

// StreamStatusCreateRequest is the body of a create call.
type StreamStatusCreateRequest struct {
	WorkspaceID        string               `json:"workspaceId"`
	ConnectionID       string               `json:"connectionId"`
	JobID              int64                `json:"jobId"`
	JobType            JobType              `json:"jobType"`
	AttemptNumber      int                  `json:"attemptNumber"`
	StreamNamespace    string               `json:"streamNamespace,omitempty"`
	StreamName         string               `json:"streamName"`
	RunState           RunState             `json:"runState"`
	IncompleteRunCause IncompleteRunCause   `json:"incompleteRunCause,omitempty"`
	Metadata           *RateLimitedMetadata `json:"metadata,omitempty"`
	TransitionedAt     int64                `json:"transitionedAt"`
}

// StreamStatusUpdateRequest is the body of an update call.
type StreamStatusUpdateRequest struct {
	ID string `json:"id"`
	StreamStatusCreateRequest
}

// StatusCache remembers, for one sync, the last status entity the API
// confirmed for each stream. It is safe for concurrent use.
type StatusCache struct {
	mu       sync.RWMutex
	statuses map[StreamKey]StreamStatus
}

// NewStatusCache creates an empty cache.
func NewStatusCache() *StatusCache {
	return &StatusCache{statuses: make(map[StreamKey]StreamStatus)}
}

// Get returns the cached entity for key.
func (c *StatusCache) Get(key StreamKey) (StreamStatus, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.statuses[key]
	return s, ok
}

// Put stores the entity for key, replacing any previous one.
func (c *StatusCache) Put(key StreamKey, status StreamStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statuses[key] = status
}

// Len returns the number of cached streams.
func (c *StatusCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.statuses)
}

// StreamStatusUpdateEvent is published whenever a stream's run-state changes.
type StreamStatusUpdateEvent struct {
	// Cache is the per-sync cache the reconciler should consult.
	Cache *StatusCache

	Key      StreamKey
	RunState RunState
	Metadata *RateLimitedMetadata
	Sync     SyncContext
}
