// Package oracle is the Oracle backend variant.
//
// It is not implemented. Every operation checks that the shared connection
// is open, so a closed connection still surfaces storage.ErrConnectionUnavailable,
// and then reports an empty store: adds return the unassigned id, lookups
// return storage.ErrRecordNotFound, lists are empty and writes match no rows.
package oracle

import (
	"context"
	"database/sql"
	"fmt"

	"roster/models"
	"roster/storage"
)

// Connection is the part of the shared connection resource the stub needs.
type Connection interface {
	Handle() (*sql.DB, error)
}

type Repository struct {
	conn Connection
}

var _ storage.Repository = (*Repository)(nil)

func New(conn Connection) *Repository {
	return &Repository{conn: conn}
}

func (r *Repository) AddRecord(ctx context.Context, rec models.Record) (int, error) {
	if _, err := r.conn.Handle(); err != nil {
		return 0, err
	}
	return models.UnassignedID, nil
}

func (r *Repository) GetRecord(ctx context.Context, id int) (models.Record, error) {
	if _, err := r.conn.Handle(); err != nil {
		return models.Record{}, err
	}
	return models.Record{}, fmt.Errorf("%w: id %d", storage.ErrRecordNotFound, id)
}

func (r *Repository) ListRecords(ctx context.Context) ([]models.Record, error) {
	if _, err := r.conn.Handle(); err != nil {
		return nil, err
	}
	return []models.Record{}, nil
}

func (r *Repository) UpdateRecord(ctx context.Context, rec models.Record) (int, error) {
	return r.noRows()
}

func (r *Repository) DeleteRecord(ctx context.Context, id int) (int, error) {
	return r.noRows()
}

func (r *Repository) DeleteAll(ctx context.Context) (int, error) {
	return r.noRows()
}

func (r *Repository) noRows() (int, error) {
	if _, err := r.conn.Handle(); err != nil {
		return 0, err
	}
	return 0, nil
}

// LogRepository is the stub audit log; entries are accepted and dropped.
type LogRepository struct {
	conn Connection
}

var _ storage.LogRepository = (*LogRepository)(nil)

func NewLogRepository(conn Connection) *LogRepository {
	return &LogRepository{conn: conn}
}

func (l *LogRepository) AddEntry(ctx context.Context, message string) error {
	_, err := l.conn.Handle()
	return err
}

func (l *LogRepository) GetEntries(ctx context.Context, n int) ([]models.LogEntry, error) {
	if _, err := l.conn.Handle(); err != nil {
		return nil, err
	}
	return []models.LogEntry{}, nil
}
