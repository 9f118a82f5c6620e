// Package annotate turns raw text chunks into location-aware, symbol-aware
// annotations ready for embedding.
//
// Three steps, all deterministic and side-effect free: ResolveLines maps a
// chunk's byte offset to 1-indexed lines, ClosestContext finds the
// enclosing or nearest preceding function/class from the file outline, and
// Annotate composes the final natural-language wrapper around the fenced
// chunk body.
package annotate
