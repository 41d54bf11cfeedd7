// Package ledger provides SQLite-backed durable storage for the prize draw.
//
// The ledger owns three tables:
//   - users: participants, keyed by a stable external id
//   - prizes: one row per registered image, with a one-way used flag
//   - winners: win records, at most one per (user_id, prize_id)
//
// # Uniqueness
//
// The winners table carries a composite primary key on (user_id, prize_id).
// RecordWin inserts with ON CONFLICT DO NOTHING and reports AlreadyRecorded
// when no row was written, so duplicate wins cannot race in between a read
// and a write.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Win records must reference existing users and prizes
//
// Databases written by earlier versions of the tool (no composite key on
// winners) are upgraded in place by the v1 migration.
package ledger
