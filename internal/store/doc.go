// Package store provides SQLite-backed storage for machine run history.
//
// The store is an append-only log with:
//   - Machines: canonical description JSON keyed by content hash
//   - Runs: one record per input line (input, output, verdict, error)
//   - Steps: recorded configurations of traced runs
//
// # Ordering
//
// Runs are stamped with a logical seq, never a wall-clock time.
// All run queries use ORDER BY seq ASC, id ASC COLLATE BINARY so listing
// and replay are deterministic.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Unsigned values (states, step counts) are stored bit-for-bit as INTEGER.
package store
