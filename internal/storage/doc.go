// Package storage persists indexed repositories in SQLite.
//
// Three tables: repos (one row per indexed git root), chunks (annotated
// chunk text with file location, line range, and byte offset), and
// embeddings (serialized float32 vectors, one per chunk). Schema changes
// run through versioned migrations gated by semver comparison.
//
// Two build variants select the driver. With the sqlite_vec tag the
// mattn/go-sqlite3 driver is used and vector similarity is computed in SQL
// by the sqlite-vec extension. The default purego build uses
// modernc.org/sqlite and scores vectors in Go. Both expose the same
// SearchVector API returning cosine similarity in [0, 1].
//
// All write paths route through internal *WithQuerier helpers so the same
// statements serve both *sql.DB and transaction contexts.
package storage
