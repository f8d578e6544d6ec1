//go:build sqlite_vec
// +build sqlite_vec

package vectorstore

// Compiled when building with CGO and the sqlite_vec tag. The C driver is
// faster for blob-heavy workloads and allows loading the sqlite-vec
// extension where available.
//
// Build command:
//   CGO_ENABLED=1 go build -tags "sqlite_vec" ./...
//
// Driver used: github.com/mattn/go-sqlite3

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite3"

	// VectorExtensionAvailable indicates if a SQL-level vector extension
	// can be used
	VectorExtensionAvailable = true

	// BuildMode describes the current build configuration
	BuildMode = "cgo"
)
