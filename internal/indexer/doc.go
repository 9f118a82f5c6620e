// Package indexer coordinates the indexing pipeline: crawl and annotate a
// repository, persist the chunks, generate embeddings, and record repo
// statistics.
//
// A run fully replaces the repo's previous chunk set, so files deleted
// since the last run disappear from search. Chunk writes are batched into
// transactions; embeddings are generated in provider-sized batches.
// Concurrent runs against the same root are rejected with
// ErrIndexInProgress via a per-root non-blocking lock.
package indexer
