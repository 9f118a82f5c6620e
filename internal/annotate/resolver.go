package annotate

import (
	"fmt"
	"strings"

	"github.com/davidbridgwood/RepoGPT/pkg/types"
)

// ResolveLines translates a raw chunk's byte offset into 1-indexed start
// and end lines. Lines come from newline counts in the original text, not
// from syntax-tree rows: the chunk boundary may fall in the middle of a
// construct, and the two indexing schemes are independent.
func ResolveLines(source string, chunk types.RawChunk) types.ResolvedChunk {
	offset := chunk.ByteStart
	if offset < 0 {
		offset = 0
	}
	if offset > len(source) {
		offset = len(source)
	}

	start := strings.Count(source[:offset], "\n") + 1
	end := start + strings.Count(chunk.Text, "\n")
	return types.ResolvedChunk{
		RawChunk:  chunk,
		StartLine: start,
		EndLine:   end,
	}
}

// ClosestContext names the method and/or class most relevant to a chunk
// starting at startLine (1-indexed). A span that contains the line wins,
// the tightest one when definitions nest; otherwise the nearest span
// starting before the line is taken as "the chunk continues inside the
// body of the last symbol that started before it". Returns "" when the
// outline is empty or every symbol starts after the chunk.
func ClosestContext(outline *types.FileOutline, startLine int) string {
	if outline == nil {
		return ""
	}

	var parts []string
	if span, ok := closestSpan(outline.Methods, startLine); ok {
		parts = append(parts, fmt.Sprintf("a method named %s starting on line %d",
			span.Name, span.StartLine+1))
	}
	if span, ok := closestSpan(outline.Classes, startLine); ok {
		parts = append(parts, fmt.Sprintf("a class named %s starting on line %d",
			span.Name, span.StartLine+1))
	}
	if len(parts) == 0 {
		return ""
	}
	return "In this file there is " + strings.Join(parts, " and ") + "."
}

// closestSpan scans a sorted span list for the best match to a line. The
// scan is linear; outlines are small enough that no index is worth it.
func closestSpan(spans []types.SymbolSpan, line int) (types.SymbolSpan, bool) {
	var best types.SymbolSpan
	found := false
	bestSize := 0

	// Containment first: tightest span wins when multiple nest.
	for _, span := range spans {
		if span.StartLine <= line && line <= span.EndLine {
			size := span.EndLine - span.StartLine
			if !found || size < bestSize {
				best = span
				bestSize = size
				found = true
			}
		}
	}
	if found {
		return best, true
	}

	// Fall back to the nearest preceding symbol.
	for _, span := range spans {
		if span.StartLine <= line && (!found || span.StartLine > best.StartLine) {
			best = span
			found = true
		}
	}
	return best, found
}
