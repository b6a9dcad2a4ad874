//go:build !cgo_sqlite

package database

import (
	_ "modernc.org/sqlite"
)

const (
	sqliteDriverName = "sqlite"
	sqliteDriverType = "purego"
)
