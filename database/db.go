package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-sql-driver/mysql"

	"roster/storage"
)

// Connector establishes the underlying connection.
// Tests substitute their own to count or fail connection attempts.
type Connector func(ctx context.Context) (*sql.DB, error)

// DB is the shared handle to the backing store.
// It is Closed until Open succeeds and holds at most one underlying connection.
type DB struct {
	mu      sync.Mutex
	connect Connector
	dialect Dialect
	conn    *sql.DB
	logger  *slog.Logger
}

// New builds a closed DB. Nothing is dialed until Open.
func New(connect Connector, dialect Dialect, logger *slog.Logger) *DB {
	if logger == nil {
		logger = slog.Default()
	}
	return &DB{
		connect: connect,
		dialect: dialect,
		logger:  logger,
	}
}

// Open connects and applies the schema. Calling it while already open is a no-op.
func (db *DB) Open(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.conn != nil {
		return nil
	}
	if db.connect == nil {
		return fmt.Errorf("%w: no connector configured", storage.ErrConnectionUnavailable)
	}

	conn, err := db.connect(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", storage.ErrConnectionUnavailable, err)
	}

	if err := migrate(ctx, conn, db.dialect); err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			db.logger.Warn("failed to close connection after migration error", "error", closeErr)
		}
		return fmt.Errorf("%w: %w", storage.ErrConnectionUnavailable, err)
	}

	db.conn = conn
	db.logger.Info("database connection opened", "dialect", db.dialect)
	return nil
}

// Close releases the connection. Failures are logged, never returned.
func (db *DB) Close() {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.conn == nil {
		return
	}
	if err := db.conn.Close(); err != nil {
		db.logger.Error("can't close database connection", "error", err)
	}
	db.conn = nil
	db.logger.Info("database connection closed")
}

// Handle returns the live connection, or ErrConnectionUnavailable while closed.
func (db *DB) Handle() (*sql.DB, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.conn == nil {
		return nil, storage.ErrConnectionUnavailable
	}
	return db.conn, nil
}

func (db *DB) IsOpen() bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.conn != nil
}

func (db *DB) Dialect() Dialect {
	return db.dialect
}

// ==================== CONNECTORS ====================

// SQLiteConnector opens a SQLite file, creating its directory when needed.
func SQLiteConnector(dbPath string) Connector {
	return func(ctx context.Context) (*sql.DB, error) {
		if dbPath != ":memory:" && !strings.HasPrefix(dbPath, "file:") {
			if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}

		conn, err := sql.Open(sqliteDriver, dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}

		// SQLite allows a single writer; one pooled connection also keeps
		// ":memory:" databases alive between statements.
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)

		if err := conn.PingContext(ctx); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		pragmas := []string{
			"PRAGMA journal_mode = WAL",
			"PRAGMA busy_timeout = 5000",
			"PRAGMA foreign_keys = ON",
		}
		for _, pragma := range pragmas {
			if _, err := conn.ExecContext(ctx, pragma); err != nil {
				conn.Close()
				return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
			}
		}

		return conn, nil
	}
}

// MySQLConnector opens a MySQL server connection from a go-sql-driver DSN.
func MySQLConnector(dsn string) Connector {
	return func(ctx context.Context) (*sql.DB, error) {
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("invalid mysql dsn: %w", err)
		}
		// Rows affected must count matched rows, not changed ones.
		cfg.ClientFoundRows = true
		cfg.ParseTime = true

		connector, err := mysql.NewConnector(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to build mysql connector: %w", err)
		}

		conn := sql.OpenDB(connector)
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)

		if err := conn.PingContext(ctx); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return conn, nil
	}
}
