// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - StreamStatusStore: Per-sync stream and global status (in memory)
//   - StreamStatusAPI: Create/update calls to the stream status service
//   - StatusUpdatePublisher: Delivery of run-state change notifications
//   - MessageReader: Protocol messages from a source or destination
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
//   - StreamStatusLister: Listing of recorded statuses. Only local backends
//     (SQLite, memory) provide it.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
