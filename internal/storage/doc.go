// Package storage implements a minimal log-structured key-value store.
//
// All mutations are appended to a single command log on disk; an in-memory
// index maps each key to the byte offset of its latest set record. The index
// is rebuilt lazily by replaying the log once per session, then maintained
// incrementally. Compaction rewrites the log to contain only live records.
//
// Architecture:
//
//	┌──────────────────────────────────────────────────────────────┐
//	│                          Store                               │
//	├──────────────────────────────────────────────────────────────┤
//	│  Write Path:  Set/Remove → append to log → update index      │
//	│  Read Path:   Get → (replay once) → index → seek → decode    │
//	├──────────────────────────────────────────────────────────────┤
//	│  Compaction:  rewrite live records, invalidate index         │
//	└──────────────────────────────────────────────────────────────┘
//
// Key components:
//   - Command: a single set or rm record, encoded as one JSON line
//   - Index: map from key to the log offset of its latest live set record
//   - Replay: sequential scan of the log that rebuilds the index
//   - Compaction: bounds log growth by discarding shadowed records
//
// On-disk format: the log is a concatenation of newline-delimited JSON
// records with no file header, version tag, or checksum. Records are never
// overwritten in place; compaction replaces the entire file content.
//
// The store is strictly single-threaded. There is no locking and no
// background work; correctness relies on the absence of concurrent access.
package storage
