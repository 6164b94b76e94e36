package memory

import (
	"sort"
	"sync"

	"github.com/custodia-labs/streamtrack/internal/core/domain"
	"github.com/custodia-labs/streamtrack/internal/core/ports/driven"
)

// Ensure StreamStatusStore implements the interface.
var _ driven.StreamStatusStore = (*StreamStatusStore)(nil)

// StreamStatusStore is an in-memory implementation of driven.StreamStatusStore.
//
// Streams are indexed by a concurrent map and each stream carries its own
// mutex, so updates to one stream never wait on another.
type StreamStatusStore struct {
	streams sync.Map // domain.StreamKey -> *streamEntry

	globalMu     sync.Mutex
	latestGlobal *int64
}

type streamEntry struct {
	mu    sync.Mutex
	value domain.StreamStatusValue
}

// NewStreamStatusStore creates an empty store for one sync.
func NewStreamStatusStore() *StreamStatusStore {
	return &StreamStatusStore{}
}

// Get returns the current value for key.
func (s *StreamStatusStore) Get(key domain.StreamKey) (domain.StreamStatusValue, bool) {
	raw, ok := s.streams.Load(key)
	if !ok {
		return domain.StreamStatusValue{}, false
	}
	e := raw.(*streamEntry)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.value.Clone(), true
}

// Set replaces the value for key.
func (s *StreamStatusStore) Set(key domain.StreamKey, value domain.StreamStatusValue) {
	s.update(key, func(v *domain.StreamStatusValue) {
		*v = value.Clone()
	})
}

// SetRunState applies domain.ResolveRunState to the stream's run-state.
func (s *StreamStatusStore) SetRunState(key domain.StreamKey, proposed domain.RunState) (domain.StreamStatusValue, bool) {
	var changed bool
	value := s.update(key, func(v *domain.StreamStatusValue) {
		next := domain.ResolveRunState(v.RunState, proposed)
		changed = next != v.RunState
		v.RunState = next
	})
	return value, changed
}

// SetLatestStateID records id if it moves the stream's checkpoint forward.
func (s *StreamStatusStore) SetLatestStateID(key domain.StreamKey, id int64) domain.StreamStatusValue {
	return s.update(key, func(v *domain.StreamStatusValue) {
		if v.LatestStateID == nil || id > *v.LatestStateID {
			v.LatestStateID = &id
		}
	})
}

// SetLatestGlobalStateID records id if it moves the global checkpoint forward.
func (s *StreamStatusStore) SetLatestGlobalStateID(id int64) int64 {
	s.globalMu.Lock()
	defer s.globalMu.Unlock()
	if s.latestGlobal == nil || id > *s.latestGlobal {
		s.latestGlobal = &id
	}
	return *s.latestGlobal
}

// LatestGlobalStateID returns the global checkpoint, if one was recorded.
func (s *StreamStatusStore) LatestGlobalStateID() (int64, bool) {
	s.globalMu.Lock()
	defer s.globalMu.Unlock()
	if s.latestGlobal == nil {
		return 0, false
	}
	return *s.latestGlobal, true
}

// SetMetadata attaches or clears rate limit metadata.
func (s *StreamStatusStore) SetMetadata(key domain.StreamKey, metadata *domain.RateLimitedMetadata) domain.StreamStatusValue {
	return s.update(key, func(v *domain.StreamStatusValue) {
		v.Metadata = metadata.Clone()
	})
}

// MarkSourceComplete sets SourceComplete. It is idempotent.
func (s *StreamStatusStore) MarkSourceComplete(key domain.StreamKey) domain.StreamStatusValue {
	return s.update(key, func(v *domain.StreamStatusValue) {
		v.SourceComplete = true
	})
}

// MarkStreamNotEmpty clears StreamEmpty. It is idempotent.
func (s *StreamStatusStore) MarkStreamNotEmpty(key domain.StreamKey) domain.StreamStatusValue {
	return s.update(key, func(v *domain.StreamStatusValue) {
		v.StreamEmpty = false
	})
}

// IsStreamComplete reports whether the destination acknowledged the stream's
// final checkpoint.
func (s *StreamStatusStore) IsStreamComplete(key domain.StreamKey, destStateID int64) bool {
	v, ok := s.Get(key)
	if !ok {
		return false
	}
	return v.SourceComplete && v.LatestStateID != nil && *v.LatestStateID == destStateID
}

// IsGlobalComplete reports whether every stream is source complete and
// destStateID matches the latest global checkpoint.
func (s *StreamStatusStore) IsGlobalComplete(destStateID int64) bool {
	latest, ok := s.LatestGlobalStateID()
	if !ok || latest != destStateID {
		return false
	}

	complete := true
	s.streams.Range(func(_, raw any) bool {
		e := raw.(*streamEntry)
		e.mu.Lock()
		sourceComplete := e.value.SourceComplete
		e.mu.Unlock()
		if !sourceComplete {
			complete = false
			return false
		}
		return true
	})
	return complete
}

// IsRateLimited reports whether key is RATE_LIMITED.
func (s *StreamStatusStore) IsRateLimited(key domain.StreamKey) bool {
	v, ok := s.Get(key)
	return ok && v.RunState == domain.RunStateRateLimited
}

// Entries returns a snapshot of every stream, ordered by namespace and name.
// Streams added while the snapshot is taken may or may not be included.
func (s *StreamStatusStore) Entries() []domain.StreamStatusEntry {
	var entries []domain.StreamStatusEntry
	s.streams.Range(func(k, raw any) bool {
		e := raw.(*streamEntry)
		e.mu.Lock()
		entries = append(entries, domain.StreamStatusEntry{Key: k.(domain.StreamKey), Value: e.value.Clone()})
		e.mu.Unlock()
		return true
	})

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Key.Namespace != entries[j].Key.Namespace {
			return entries[i].Key.Namespace < entries[j].Key.Namespace
		}
		return entries[i].Key.Name < entries[j].Key.Name
	})
	return entries
}

// entry returns the stream's entry, creating it with defaults on first access.
func (s *StreamStatusStore) entry(key domain.StreamKey) *streamEntry {
	if raw, ok := s.streams.Load(key); ok {
		return raw.(*streamEntry)
	}
	raw, _ := s.streams.LoadOrStore(key, &streamEntry{value: domain.NewStreamStatusValue()})
	return raw.(*streamEntry)
}

// update runs fn under the stream's lock and returns a copy of the result.
func (s *StreamStatusStore) update(key domain.StreamKey, fn func(v *domain.StreamStatusValue)) domain.StreamStatusValue {
	e := s.entry(key)
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.value)
	return e.value.Clone()
}
