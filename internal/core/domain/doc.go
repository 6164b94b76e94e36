// Package domain defines the core entities for stream status tracking.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - StreamKey: Identity of one stream within a sync
//   - StreamStatusValue: Mutable run-state and progress of a stream
//   - Message: Protocol messages emitted by source and destination
//   - StreamStatus: The status entity owned by the stream status API
//   - StatusCache: Per-sync memo of status entities already sent
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
