// Package storage provides the BBolt backup history kept next to a vault.
//
// Before every save the previous vault file is copied into the history
// database, so a vault damaged by a bad sync or a disk error can be rolled
// back. Snapshots are stored exactly as written (they are already
// encrypted), so the history never needs the master password.
//
// Database structure uses three buckets:
//   - config: format version, creation time, vault ID (used as keyring account)
//   - index: snapshot ID -> size, timestamp, reason (JSON)
//   - snapshots: snapshot ID -> raw vault file bytes
//
// Snapshot IDs come from the index bucket sequence, so iteration order is
// chronological.
package storage
