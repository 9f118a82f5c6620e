// Package splitter cuts file text into bounded-size chunks for embedding.
//
// Splitting is recursive: each language has a stack of separators ordered
// from most to least semantic (class and function boundaries down to
// blank lines, single newlines, spaces, and finally hard byte cuts). Text
// is fragmented down the stack until every fragment fits the chunk size,
// then adjacent fragments are greedily merged back up to the size limit.
//
// Every chunk carries the exact byte offset of its first byte in the
// original text; downstream line resolution depends on that offset, so the
// splitter never trims or rewrites chunk bodies.
package splitter
