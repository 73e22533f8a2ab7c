package setup

import (
	"context"
	"fmt"
	"log/slog"

	"roster/app"
	"roster/config"
	"roster/database"
	"roster/storage"
)

// InitDatabase builds the shared connection for the configured backend.
// Nothing is dialed here; the controller opens it.
//
// The oracle stub never touches its handle, so it rides on the SQLite file
// purely to give open/closed state something real to track.
func InitDatabase(cfg *config.Config, logger *slog.Logger) (*database.DB, error) {
	backend, err := storage.ParseBackend(cfg.Backend)
	if err != nil {
		return nil, err
	}

	switch backend {
	case storage.BackendMySQL:
		logger.Info("database configured", "backend", backend)
		return database.New(database.MySQLConnector(cfg.MySQLDSN), database.DialectMySQL, logger), nil
	case storage.BackendSQLite, storage.BackendOracle:
		logger.Info("database configured", "backend", backend, "path", cfg.DBPath)
		return database.New(database.SQLiteConnector(cfg.DBPath), database.DialectSQLite, logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", storage.ErrUnsupportedBackend, backend)
	}
}

// InitApp wires the application, opens the connection, loads the working set
// and starts the coordinator.
func InitApp(ctx context.Context, db *database.DB, cfg *config.Config, logger *slog.Logger) (*app.App, error) {
	application := app.New(db, cfg.StorageBackend(), nil, logger, cfg.RefreshInterval)

	// The coordinator is not running yet, so this goroutine owns the working set.
	if err := application.Controller.OnOpen(ctx); err != nil {
		application.Controller.OnClose()
		return nil, err
	}

	application.Coordinator.Start()
	logger.Info("application initialized", "backend", application.Backend, "records", application.Model.Len())

	return application, nil
}

// Shutdown performs graceful shutdown of all services
func Shutdown(application *app.App, logger *slog.Logger) {
	logger.Info("shutting down services...")

	if application == nil {
		return
	}

	application.Coordinator.Stop()
	application.Controller.OnClose()
	logger.Info("database closed")
}
