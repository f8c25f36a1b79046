// Package store provides a SQLite-backed journal of semantic record changes.
//
// The journal is append-only. Each row is one notification the engine
// emitted: its kind, the item it concerns and the old and new records as
// canonical JSON. Rows are grouped into runs, one per Journal, because every
// derivation starts from an empty engine. Folding one run in seq order
// reproduces that engine's record set at any point (see Replay).
//
// # Critical Patterns
//
// Logical Identity and Time
//   - All ordering uses seq INTEGER (logical clock), NEVER timestamps
//   - Change IDs are content hashes (ir.ChangeID), so rewriting the same
//     change is a no-op
//
// Deterministic Query Results
//   - All queries order by seq ASC
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait up to 5 seconds on lock contention
//   - Single connection: SQLite allows one writer at a time
package store
