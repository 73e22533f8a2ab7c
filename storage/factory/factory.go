package factory

import (
	"fmt"

	"roster/database"
	"roster/storage"
	"roster/storage/oracle"
)

// Factory resolves a backend tag to a repository bound to the shared connection.
// It keeps no state of its own; every call builds a fresh repository.
type Factory struct {
	db *database.DB
}

func New(db *database.DB) *Factory {
	return &Factory{db: db}
}

// ForBackend returns the record repository for tag.
// Unknown tags fail with storage.ErrUnsupportedBackend and a nil repository.
func (f *Factory) ForBackend(tag storage.Backend) (storage.Repository, error) {
	switch tag {
	case storage.BackendSQLite, storage.BackendMySQL:
		return database.NewRecordRepository(f.db), nil
	case storage.BackendOracle:
		return oracle.New(f.db), nil
	default:
		return nil, fmt.Errorf("%w: %q", storage.ErrUnsupportedBackend, tag)
	}
}

// LogsForBackend returns the audit log repository for tag.
func (f *Factory) LogsForBackend(tag storage.Backend) (storage.LogRepository, error) {
	switch tag {
	case storage.BackendSQLite, storage.BackendMySQL:
		return database.NewLogRepository(f.db), nil
	case storage.BackendOracle:
		return oracle.NewLogRepository(f.db), nil
	default:
		return nil, fmt.Errorf("%w: %q", storage.ErrUnsupportedBackend, tag)
	}
}
