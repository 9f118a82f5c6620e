package types

import (
	"crypto/sha256"
	"errors"
	"path/filepath"
)

// RawChunk is a bounded-size slice of a file's text as produced by the
// splitter. ByteStart is the offset of the chunk's first byte in the
// original decoded file text.
type RawChunk struct {
	Text      string
	ByteStart int
}

// Validate checks that the raw chunk is well formed
func (c *RawChunk) Validate() error {
	if c.Text == "" {
		return errors.New("chunk text cannot be empty")
	}
	if c.ByteStart < 0 {
		return errors.New("byte offset must be non-negative")
	}
	return nil
}

// ResolvedChunk is a RawChunk with its location translated into 1-indexed
// line numbers. Lines are derived purely from newline counts, never from
// syntax-tree rows: a chunk boundary may fall mid-construct.
type ResolvedChunk struct {
	RawChunk
	StartLine int
	EndLine   int
}

// Validate checks the resolved line range
func (c *ResolvedChunk) Validate() error {
	if err := c.RawChunk.Validate(); err != nil {
		return err
	}
	if c.StartLine <= 0 || c.EndLine <= 0 {
		return errors.New("line numbers must be positive")
	}
	if c.StartLine > c.EndLine {
		return errors.New("start line must be before or equal to end line")
	}
	return nil
}

// AnnotatedChunk is the final indexable unit: the chunk body rewritten with
// a file-location header, an optional symbol-context sentence, and a code
// fence. Location metadata is preserved alongside the rewritten text for
// downstream consumers.
type AnnotatedChunk struct {
	Text        string // Composed annotation, not the raw body
	DirPath     string
	FileName    string
	StartLine   int
	EndLine     int
	ByteStart   int
	ContentHash [32]byte // SHA-256 of Text, for deduplication
}

// Location returns the file path the chunk was cut from.
func (c *AnnotatedChunk) Location() string {
	return filepath.Join(c.DirPath, c.FileName)
}

// ComputeContentHash computes the SHA-256 hash of the annotated text
func (c *AnnotatedChunk) ComputeContentHash() {
	c.ContentHash = sha256.Sum256([]byte(c.Text))
}

// Validate performs comprehensive validation of the annotated chunk
func (c *AnnotatedChunk) Validate() error {
	if c.Text == "" {
		return errors.New("annotated text cannot be empty")
	}
	if c.FileName == "" {
		return errors.New("file name is required")
	}
	if c.StartLine <= 0 || c.EndLine <= 0 {
		return errors.New("line numbers must be positive")
	}
	if c.StartLine > c.EndLine {
		return errors.New("start line must be before or equal to end line")
	}
	var zeroHash [32]byte
	if c.ContentHash == zeroHash {
		return errors.New("content hash must be computed")
	}
	return nil
}
