// Package store provides SQLite-backed durable storage for recorded histories.
//
// The store is an append-only log with:
//   - Histories: one row per recorded run (name, node count, content hash)
//   - Spans: every span fed to the checker, in feed order
//   - Verdicts: the checker's answer after each span, with live-set size
//
// # Critical Patterns
//
// Feed order is identity:
//   - spans.seq is the position in the fed sequence, starting at 0
//   - Replay MUST read spans ORDER BY seq ASC; per-node order is only
//     guaranteed by that ordering
//
// Unsigned values:
//   - Values and timestamps are uint64 and stored as their int64 bit pattern;
//     SQLite integers are signed
//
// Sealing:
//   - Seal computes history.ContentHash over the stored spans, so identical
//     recordings can be recognised regardless of their generated IDs
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
