package app

import (
	"context"
	"log/slog"
	"time"

	"roster/coordinator"
	"roster/database"
	"roster/services"
	"roster/storage"
	"roster/storage/factory"
	"roster/validator"
)

// App holds all application dependencies
// This struct is the central point for dependency injection
type App struct {
	DB          *database.DB
	Factory     *factory.Factory
	Backend     storage.Backend
	Model       *services.WorkingSet
	Changes     *services.ChangeCounter
	Controller  *Controller
	Coordinator *coordinator.Coordinator
	Validator   *validator.Validator
	Logger      *slog.Logger
}

// New wires the working set, controller and coordinator around one shared connection.
// view receives user-facing error reports; nil falls back to logging them.
// A positive refreshInterval reloads the working set on the coordinator loop.
func New(db *database.DB, backend storage.Backend, view View, logger *slog.Logger, refreshInterval time.Duration) *App {
	if logger == nil {
		logger = slog.Default()
	}
	if view == nil {
		view = LogView{Logger: logger}
	}

	f := factory.New(db)
	model := services.NewWorkingSet(f, backend, logger)
	changes := &services.ChangeCounter{}
	model.RegisterListener(changes)
	v := validator.New()

	refresh := func(ctx context.Context) error {
		return model.Load(ctx)
	}

	return &App{
		DB:          db,
		Factory:     f,
		Backend:     backend,
		Model:       model,
		Changes:     changes,
		Controller:  NewController(db, f, model, v, view, logger),
		Coordinator: coordinator.New(logger, coordinator.WithRefresh(refreshInterval, refresh)),
		Validator:   v,
		Logger:      logger,
	}
}

// Logs returns the audit log repository for the active backend.
func (a *App) Logs() (storage.LogRepository, error) {
	return a.Factory.LogsForBackend(a.Backend)
}
