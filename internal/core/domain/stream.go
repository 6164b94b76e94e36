package domain

// StreamKey identifies a stream within a sync.
// It is comparable and used as a map key throughout the engine.
type StreamKey struct {
	// Namespace is optional; empty means the stream has no namespace.
	Namespace string

	// Name is the stream name.
	Name string
}

// NewStreamKey creates a key from a name and an optional namespace.
func NewStreamKey(namespace, name string) StreamKey {
	return StreamKey{Namespace: namespace, Name: name}
}

// HasNamespace reports whether the stream is namespaced.
func (k StreamKey) HasNamespace() bool {
	return k.Namespace != ""
}

// String renders the key as namespace:name.
func (k StreamKey) String() string {
	return k.Namespace + ":" + k.Name
}

// RateLimitedMetadata describes why a stream is rate limited.
type RateLimitedMetadata struct {
	// QuotaReset is the epoch millisecond timestamp at which the quota resets.
	QuotaReset *int64 `json:"quotaReset,omitempty"`
}

// Clone returns a deep copy, or nil for a nil receiver.
func (m *RateLimitedMetadata) Clone() *RateLimitedMetadata {
	if m == nil {
		return nil
	}
	c := &RateLimitedMetadata{}
	if m.QuotaReset != nil {
		v := *m.QuotaReset
		c.QuotaReset = &v
	}
	return c
}

// StreamStatusValue is the mutable status of a single stream during a sync.
type StreamStatusValue struct {
	// RunState is the externally reported run-state.
	RunState RunState

	// LatestStateID is the highest checkpoint id recorded for the stream.
	// Nil until the first stream-scoped checkpoint is observed.
	LatestStateID *int64

	// SourceComplete is true once the source has finished emitting the stream.
	SourceComplete bool

	// StreamEmpty is true until a record has been observed.
	StreamEmpty bool

	// Metadata is set while the stream is rate limited.
	Metadata *RateLimitedMetadata
}

// NewStreamStatusValue returns the value assigned to a stream on first access.
func NewStreamStatusValue() StreamStatusValue {
	return StreamStatusValue{StreamEmpty: true}
}

// Clone returns a copy that shares no pointers with the receiver.
func (v StreamStatusValue) Clone() StreamStatusValue {
	c := v
	if v.LatestStateID != nil {
		id := *v.LatestStateID
		c.LatestStateID = &id
	}
	c.Metadata = v.Metadata.Clone()
	return c
}

// StreamStatusEntry pairs a key with a snapshot of its value.
type StreamStatusEntry struct {
	Key   StreamKey
	Value StreamStatusValue
}
