// Package types provides shared type definitions for RepoGPT.
//
// The types follow the chunk annotation pipeline from raw file text to
// indexable output:
//
//	FileOutline:    per-file structural outline (function and class spans)
//	RawChunk:       splitter output with a byte offset into the file
//	ResolvedChunk:  RawChunk plus 1-indexed start/end lines
//	AnnotatedChunk: final text with location header, symbol context and
//	                code fence, ready for embedding
//
// Outline spans keep the tree-sitter 0-indexed row convention while chunk
// lines are 1-indexed newline counts. The mismatch is deliberate: the two
// schemes come from independent sources and downstream annotations depend
// on the exact numbers each one produces.
//
// All domain types implement validation methods:
//
//	if err := chunk.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package types
