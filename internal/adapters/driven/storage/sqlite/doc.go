// Package sqlite provides a local stream status ledger backed by SQLite.
//
// The ledger implements the same create and update contract as the remote
// stream status service, so a sync can be tracked offline and inspected later
// with ListStreamStatuses. It uses modernc.org/sqlite, a pure Go SQLite
// implementation that requires no CGO.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.streamtrack/data/status.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
