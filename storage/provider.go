package storage

import (
	"context"
	"fmt"
	"strings"

	"roster/models"
)

// Backend tags one storage technology. The set is closed.
type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendMySQL  Backend = "mysql"
	BackendOracle Backend = "oracle"
)

const (
	PrimaryBackend   = BackendSQLite
	SecondaryBackend = BackendOracle
)

// Backends lists every supported tag in a stable order.
var Backends = []Backend{BackendSQLite, BackendMySQL, BackendOracle}

// ParseBackend converts a tag read from config or flags.
func ParseBackend(s string) (Backend, error) {
	tag := Backend(strings.ToLower(strings.TrimSpace(s)))
	for _, b := range Backends {
		if b == tag {
			return b, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedBackend, s)
}

// Implemented reports whether the backend has a real store behind it.
// The Oracle variant is a stub that always reports an empty store.
func (b Backend) Implemented() bool {
	return b == BackendSQLite || b == BackendMySQL
}

func (b Backend) String() string {
	return string(b)
}

// Repository is the record capability every backend variant provides.
type Repository interface {
	// AddRecord stores r and returns the id the store assigned. r itself is left untouched.
	AddRecord(ctx context.Context, r models.Record) (int, error)

	// GetRecord fails with ErrRecordNotFound when no record carries id.
	GetRecord(ctx context.Context, id int) (models.Record, error)

	// ListRecords returns every record ordered by id ascending.
	ListRecords(ctx context.Context) ([]models.Record, error)

	// UpdateRecord matches by r.ID; zero rows affected means no such id.
	UpdateRecord(ctx context.Context, r models.Record) (int, error)

	DeleteRecord(ctx context.Context, id int) (int, error)
	DeleteAll(ctx context.Context) (int, error)
}

// LogRepository keeps the operator audit trail.
type LogRepository interface {
	AddEntry(ctx context.Context, message string) error

	// GetEntries returns the latest n entries, newest first.
	GetEntries(ctx context.Context, n int) ([]models.LogEntry, error)
}
