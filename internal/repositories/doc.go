// Package repositories implements SQLite persistence for the search history.
//
// Key Implementations:
//   - [SearchHistoryRepository] : one row per executed catalog search, newest first
//
// Sequence numbers provide stable, human-readable ordering (e.g., search #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
