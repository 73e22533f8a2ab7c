package app

import (
	"context"
	"fmt"
	"log/slog"

	"roster/models"
	"roster/services"
	"roster/storage"
	"roster/validator"
)

// Connection is the lifecycle half of the shared connection resource.
type Connection interface {
	Open(ctx context.Context) error
	Close()
}

// LogFactory resolves the audit log repository for a backend.
type LogFactory interface {
	LogsForBackend(tag storage.Backend) (storage.LogRepository, error)
}

// View receives failures the operator should see.
type View interface {
	ShowError(message string, err error)
}

// LogView reports errors through the structured logger.
type LogView struct {
	Logger *slog.Logger
}

func (v LogView) ShowError(message string, err error) {
	v.Logger.Error(message, "error", err)
}

// Controller turns operator intents into working-set and connection calls.
// It must run on the coordinator; none of its methods are safe for concurrent use.
type Controller struct {
	conn      Connection
	logs      LogFactory
	model     *services.WorkingSet
	validator *validator.Validator
	view      View
	logger    *slog.Logger
}

func NewController(conn Connection, logs LogFactory, model *services.WorkingSet, v *validator.Validator, view View, logger *slog.Logger) *Controller {
	return &Controller{
		conn:      conn,
		logs:      logs,
		model:     model,
		validator: v,
		view:      view,
		logger:    logger,
	}
}

// ==================== LIFECYCLE ====================

// OnOpen connects and loads the working set. Each failure is shown and returned.
func (c *Controller) OnOpen(ctx context.Context) error {
	if err := c.conn.Open(ctx); err != nil {
		c.view.ShowError("Unable to connect to the database", err)
		return err
	}

	backend := c.model.Backend()
	if !backend.Implemented() {
		c.logger.Warn("backend is not implemented; the store will always look empty", "backend", backend)
	}

	if err := c.model.Load(ctx); err != nil {
		c.view.ShowError("Error loading data from database", err)
		return err
	}

	c.logger.Info("working set loaded", "backend", backend, "records", c.model.Len())
	return nil
}

func (c *Controller) OnClose() {
	c.conn.Close()
}

// ==================== RECORDS ====================

// OnRecordCreated validates req and stages a transient record.
func (c *Controller) OnRecordCreated(ctx context.Context, req models.CreateRecordRequest) (models.Record, error) {
	if err := c.validator.Validate(&req); err != nil {
		return models.Record{}, err
	}

	rec := models.NewRecord(req.Name, req.Secret)
	if c.model.Add(rec) {
		c.audit(ctx, fmt.Sprintf("record staged: %s", rec.Name))
	}
	return rec, nil
}

// OnRecordUpdated stages new values for the persisted record carrying id.
func (c *Controller) OnRecordUpdated(ctx context.Context, id int, req models.UpdateRecordRequest) (models.Record, error) {
	if err := c.validator.Validate(&req); err != nil {
		return models.Record{}, err
	}

	old, ok := c.model.Find(id)
	if !ok {
		return models.Record{}, fmt.Errorf("%w: id %d", services.ErrRecordNotHeld, id)
	}

	updated := models.Record{ID: id, Name: req.Name, Secret: req.Secret}
	if err := c.model.Replace(old, updated); err != nil {
		return models.Record{}, err
	}

	c.audit(ctx, fmt.Sprintf("record edited: %d", id))
	return updated, nil
}

// OnRecordDeleted removes the persisted record carrying id from store and working set.
func (c *Controller) OnRecordDeleted(ctx context.Context, id int) error {
	rec, ok := c.model.Find(id)
	if !ok {
		return fmt.Errorf("%w: id %d", services.ErrRecordNotHeld, id)
	}

	if err := c.model.Delete(ctx, rec); err != nil {
		c.view.ShowError("Error deleting from the database", err)
		return err
	}

	c.audit(ctx, fmt.Sprintf("record deleted: %d", id))
	return nil
}

// OnSave persists the working set.
func (c *Controller) OnSave(ctx context.Context) error {
	staged := c.model.Len()

	if err := c.model.Save(ctx); err != nil {
		c.view.ShowError("Error saving to the database", err)
		return err
	}

	c.audit(ctx, fmt.Sprintf("saved %d records", staged))
	return nil
}

// audit appends to the operator log. Failures are logged and otherwise ignored.
func (c *Controller) audit(ctx context.Context, message string) {
	logs, err := c.logs.LogsForBackend(c.model.Backend())
	if err != nil {
		c.logger.Warn("audit log unavailable", "error", err)
		return
	}
	if err := logs.AddEntry(ctx, message); err != nil {
		c.logger.Warn("failed to write audit entry", "message", message, "error", err)
	}
}
