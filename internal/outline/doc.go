// Package outline builds lightweight per-file structural outlines from
// tree-sitter syntax trees.
//
// An outline is an ordered list of function and class spans with 0-indexed
// row ranges. It is intentionally shallow: no scope resolution, no
// cross-file symbols, no types. It carries just enough structure to tell which
// symbol a text chunk falls inside.
//
//	b := outline.ForFile("service.py")
//	o, err := b.Outline(ctx, src)
//
// Grammar selection is a static extension table initialized once per
// process. Files whose extension has no grammar get a no-op builder that
// returns an empty outline rather than an error, so every language stays
// eligible for chunking.
package outline
