package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Dialect selects the DDL flavour applied on Open.
// Record and log queries are portable and shared by every dialect.
type Dialect string

const (
	DialectSQLite Dialect = "sqlite"
	DialectMySQL  Dialect = "mysql"
)

func (d Dialect) schema() ([]string, error) {
	switch d {
	case DialectSQLite:
		return []string{
			`CREATE TABLE IF NOT EXISTS people (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				secret TEXT NOT NULL,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE TABLE IF NOT EXISTS logs (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				date DATETIME NOT NULL,
				message TEXT NOT NULL
			)`,
		}, nil
	case DialectMySQL:
		return []string{
			`CREATE TABLE IF NOT EXISTS people (
				id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				secret VARCHAR(255) NOT NULL,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE TABLE IF NOT EXISTS logs (
				id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
				date DATETIME(6) NOT NULL,
				message TEXT NOT NULL
			)`,
		}, nil
	default:
		return nil, fmt.Errorf("unknown dialect %q", d)
	}
}

func migrate(ctx context.Context, conn *sql.DB, d Dialect) error {
	queries, err := d.schema()
	if err != nil {
		return err
	}

	for _, query := range queries {
		if _, err := conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}
