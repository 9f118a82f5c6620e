//go:build purego || !sqlite_vec
// +build purego !sqlite_vec

package storage

// Compiled without CGO or the sqlite_vec tag. Similarity scoring runs in
// Go, which is slower but needs no C toolchain.
//
// Build command:
//   CGO_ENABLED=0 go build ./...
//
// Driver used: modernc.org/sqlite

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite"

	// VectorExtensionAvailable indicates if vector extension is available
	VectorExtensionAvailable = false

	// BuildMode describes the current build configuration
	BuildMode = "purego"
)
