//go:build purego || !sqlite_vec
// +build purego !sqlite_vec

package vectorstore

// Compiled when building without CGO or with the purego tag. Uses the pure
// Go SQLite implementation; similarity is computed in Go.
//
// Build command:
//   CGO_ENABLED=0 go build -tags "purego" ./...
//
// Driver used: modernc.org/sqlite

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite"

	// VectorExtensionAvailable indicates if a SQL-level vector extension
	// can be used
	VectorExtensionAvailable = false

	// BuildMode describes the current build configuration
	BuildMode = "purego"
)
