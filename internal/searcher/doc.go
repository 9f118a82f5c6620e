// Package searcher answers semantic queries against an indexed repository.
//
// A query is embedded with the same provider used at indexing time, ranked
// against stored chunk vectors by cosine similarity, and the winning
// chunks are hydrated into results carrying file location, line range, and
// the full annotated text. Responses can be cached in a TTL-bounded LRU;
// the cache must be invalidated after re-indexing.
package searcher
