package types

import (
	"errors"
	"sort"
)

// SymbolSpan identifies one function or class definition in a source file.
// StartLine and EndLine are 0-indexed inclusive rows, matching the
// tree-sitter convention. Chunk line numbers are 1-indexed; the two schemes
// are intentionally distinct (see ResolvedChunk).
type SymbolSpan struct {
	Name      string
	StartLine int
	EndLine   int
}

// Validate checks that the span is well formed
func (s *SymbolSpan) Validate() error {
	if s.Name == "" {
		return errors.New("symbol name is required")
	}
	if s.StartLine < 0 || s.EndLine < 0 {
		return errors.New("span rows must be non-negative")
	}
	if s.StartLine > s.EndLine {
		return errors.New("span start row must be before or equal to end row")
	}
	return nil
}

// FileOutline is the ordered structural outline of a single file: every
// function/method span and every class/type span found in its syntax tree.
// An outline is scoped to one file-processing operation and never merged
// across files.
type FileOutline struct {
	Methods []SymbolSpan
	Classes []SymbolSpan
}

// Sort orders both span lists ascending by StartLine. Traversal order is not
// meaningful; builders must sort before exposing an outline.
func (o *FileOutline) Sort() {
	sort.SliceStable(o.Methods, func(i, j int) bool {
		return o.Methods[i].StartLine < o.Methods[j].StartLine
	})
	sort.SliceStable(o.Classes, func(i, j int) bool {
		return o.Classes[i].StartLine < o.Classes[j].StartLine
	})
}

// IsEmpty reports whether the outline carries no structural information.
// Files in unsupported languages always produce an empty outline.
func (o *FileOutline) IsEmpty() bool {
	return len(o.Methods) == 0 && len(o.Classes) == 0
}

// Validate checks the outline invariants: every span well formed and both
// lists non-decreasing by StartLine.
func (o *FileOutline) Validate() error {
	for _, spans := range [][]SymbolSpan{o.Methods, o.Classes} {
		prev := -1
		for i := range spans {
			if err := spans[i].Validate(); err != nil {
				return err
			}
			if spans[i].StartLine < prev {
				return errors.New("outline spans must be sorted by start row")
			}
			prev = spans[i].StartLine
		}
	}
	return nil
}
