package driven

import "github.com/custodia-labs/streamtrack/internal/core/domain"

// StreamStatusStore is the per-sync authority for stream and global status.
//
// Implementations must be safe for concurrent use and must apply each
// read-modify-write atomically per key. Every mutator creates the stream's
// value with domain.NewStreamStatusValue defaults on first access.
type StreamStatusStore interface {
	// Get returns the current value for key.
	Get(key domain.StreamKey) (domain.StreamStatusValue, bool)

	// Set replaces the value for key without applying any rule.
	Set(key domain.StreamKey, value domain.StreamStatusValue)

	// SetRunState offers a run-state and returns the resulting value.
	// The boolean is false when the transition rule rejected the proposal.
	SetRunState(key domain.StreamKey, proposed domain.RunState) (domain.StreamStatusValue, bool)

	// SetLatestStateID records id as the stream's latest checkpoint if it is
	// the first one or greater than the current one.
	SetLatestStateID(key domain.StreamKey, id int64) domain.StreamStatusValue

	// SetLatestGlobalStateID applies the same rule to the global counter and
	// returns the resulting value.
	SetLatestGlobalStateID(id int64) int64

	// LatestGlobalStateID returns the global counter, if set.
	LatestGlobalStateID() (int64, bool)

	// SetMetadata attaches or replaces rate limit metadata. Nil clears it.
	SetMetadata(key domain.StreamKey, metadata *domain.RateLimitedMetadata) domain.StreamStatusValue

	// MarkSourceComplete records that the source finished emitting the stream.
	MarkSourceComplete(key domain.StreamKey) domain.StreamStatusValue

	// MarkStreamNotEmpty records that a record was observed.
	MarkStreamNotEmpty(key domain.StreamKey) domain.StreamStatusValue

	// IsStreamComplete reports whether key is source complete and its latest
	// checkpoint equals destStateID. Unknown keys are never complete.
	IsStreamComplete(key domain.StreamKey, destStateID int64) bool

	// IsGlobalComplete reports whether every known stream is source complete
	// and destStateID equals the latest global checkpoint.
	IsGlobalComplete(destStateID int64) bool

	// IsRateLimited reports whether key is currently RATE_LIMITED.
	IsRateLimited(key domain.StreamKey) bool

	// Entries returns a snapshot of every stream.
	Entries() []domain.StreamStatusEntry
}
