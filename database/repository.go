package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"roster/models"
	"roster/storage"
)

// RecordRepository is the SQL backend variant. The queries are portable
// across SQLite and MySQL; the dialect only matters for the schema.
type RecordRepository struct {
	db *DB
}

var _ storage.Repository = (*RecordRepository)(nil)

func NewRecordRepository(db *DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// ==================== RECORDS ====================

func (r *RecordRepository) AddRecord(ctx context.Context, rec models.Record) (int, error) {
	conn, err := r.db.Handle()
	if err != nil {
		return 0, err
	}

	result, err := conn.ExecContext(ctx,
		"INSERT INTO people (name, secret) VALUES (?, ?)",
		rec.Name, rec.Secret,
	)
	if err != nil {
		return 0, storage.QueryFailed("add record", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, storage.QueryFailed("add record", err)
	}
	return int(id), nil
}

func (r *RecordRepository) GetRecord(ctx context.Context, id int) (models.Record, error) {
	conn, err := r.db.Handle()
	if err != nil {
		return models.Record{}, err
	}

	var rec models.Record
	err = conn.QueryRowContext(ctx,
		"SELECT id, name, secret FROM people WHERE id = ?", id,
	).Scan(&rec.ID, &rec.Name, &rec.Secret)

	if errors.Is(err, sql.ErrNoRows) {
		return models.Record{}, fmt.Errorf("%w: id %d", storage.ErrRecordNotFound, id)
	}
	if err != nil {
		return models.Record{}, storage.QueryFailed("get record", err)
	}

	return rec, nil
}

func (r *RecordRepository) ListRecords(ctx context.Context) ([]models.Record, error) {
	conn, err := r.db.Handle()
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, "SELECT id, name, secret FROM people ORDER BY id ASC")
	if err != nil {
		return nil, storage.QueryFailed("list records", err)
	}
	defer rows.Close()

	// Initialize with empty slice to avoid returning nil
	records := make([]models.Record, 0)
	for rows.Next() {
		var rec models.Record
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Secret); err != nil {
			return nil, storage.QueryFailed("scan record", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, storage.QueryFailed("list records", err)
	}
	return records, nil
}

func (r *RecordRepository) UpdateRecord(ctx context.Context, rec models.Record) (int, error) {
	return r.exec(ctx, "update record",
		"UPDATE people SET name = ?, secret = ? WHERE id = ?",
		rec.Name, rec.Secret, rec.ID,
	)
}

func (r *RecordRepository) DeleteRecord(ctx context.Context, id int) (int, error) {
	return r.exec(ctx, "delete record", "DELETE FROM people WHERE id = ?", id)
}

func (r *RecordRepository) DeleteAll(ctx context.Context) (int, error) {
	return r.exec(ctx, "delete all records", "DELETE FROM people")
}

// exec runs a write statement and reports how many rows it matched.
func (r *RecordRepository) exec(ctx context.Context, op, query string, args ...any) (int, error) {
	conn, err := r.db.Handle()
	if err != nil {
		return 0, err
	}

	result, err := conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, storage.QueryFailed(op, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, storage.QueryFailed(op, err)
	}
	return int(n), nil
}
