//go:build cgo

package database

// The cgo SQLite driver is registered only when cgo is enabled; pure-Go
// builds pick up driver_purego.go instead.

import (
	_ "github.com/mattn/go-sqlite3"
)

const sqliteDriver = "sqlite3"
