//go:build !cgo

package database

import (
	_ "modernc.org/sqlite"
)

const sqliteDriver = "sqlite"
