//go:build !sqlite3_cgo

// Pure-Go driver so lakesim cross-compiles without a C toolchain.
// Build with -tags sqlite3_cgo to switch to mattn/go-sqlite3.

package db

import (
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

const (
	driverID   = "ncruces/go-sqlite3"
	driverName = "sqlite3"
)
