package database

import (
	"context"
	"time"

	"roster/models"
	"roster/storage"
)

// ==================== AUDIT LOG ====================

// LogRepository stores the operator audit trail in the logs table.
type LogRepository struct {
	db  *DB
	now func() time.Time
}

var _ storage.LogRepository = (*LogRepository)(nil)

func NewLogRepository(db *DB) *LogRepository {
	return &LogRepository{db: db, now: time.Now}
}

// AddEntry appends a message stamped with the current UTC time.
func (l *LogRepository) AddEntry(ctx context.Context, message string) error {
	conn, err := l.db.Handle()
	if err != nil {
		return err
	}

	_, err = conn.ExecContext(ctx,
		"INSERT INTO logs (date, message) VALUES (?, ?)",
		l.now().UTC(), message,
	)
	if err != nil {
		return storage.QueryFailed("add log entry", err)
	}
	return nil
}

// GetEntries returns the latest n entries, newest first.
func (l *LogRepository) GetEntries(ctx context.Context, n int) ([]models.LogEntry, error) {
	conn, err := l.db.Handle()
	if err != nil {
		return nil, err
	}

	entries := make([]models.LogEntry, 0)
	if n <= 0 {
		return entries, nil
	}

	rows, err := conn.QueryContext(ctx,
		"SELECT id, date, message FROM logs ORDER BY id DESC LIMIT ?", n,
	)
	if err != nil {
		return nil, storage.QueryFailed("get log entries", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry models.LogEntry
		if err := rows.Scan(&entry.ID, &entry.Date, &entry.Message); err != nil {
			return nil, storage.QueryFailed("scan log entry", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, storage.QueryFailed("get log entries", err)
	}
	return entries, nil
}
