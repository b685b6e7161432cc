// Package repositories implements SQLite persistence for all domain entities.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// Entity repositories support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
//
// Key Implementations:
//   - [KVRepository] : String key-value storage backing the session store
//   - [PreferenceRepository] : Single-row notification preference persistence
//   - [UploadRepository] : Upload history with storage location lookups
//
// Sequence numbers provide stable, human-readable ordering (e.g., upload #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
