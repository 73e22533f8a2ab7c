package handlers

import (
	"context"
	"errors"
	"strconv"

	"roster/app"
	"roster/models"
	"roster/storage"

	"github.com/gofiber/fiber/v2"
)

const defaultLogLimit = 20

// ListRecords returns the working set and the change version it was read at
func ListRecords(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var records []models.Record
		var version uint64

		err := a.Coordinator.Do(c.UserContext(), func(ctx context.Context) error {
			records = a.Model.Records()
			version = a.Changes.Version()
			return nil
		})
		if err != nil {
			return fail(c, "Failed to read records", err)
		}

		return success(c, fiber.Map{"records": records, "version": version})
	}
}

// GetRecord looks a record up in the store, bypassing the working set
func GetRecord(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return badRequest(c, "Invalid record id")
		}

		var rec models.Record
		err = a.Coordinator.Do(c.UserContext(), func(ctx context.Context) error {
			repo, err := a.Factory.ForBackend(a.Backend)
			if err != nil {
				return err
			}
			rec, err = repo.GetRecord(ctx, id)
			return err
		})
		if errors.Is(err, storage.ErrRecordNotFound) {
			return notFound(c, "Record not found")
		}
		if err != nil {
			return fail(c, "Failed to fetch record", err)
		}

		return success(c, fiber.Map{"record": rec})
	}
}

// CreateRecord stages a new record; it reaches the store on the next save
func CreateRecord(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.CreateRecordRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}

		var rec models.Record
		err := a.Coordinator.Do(c.UserContext(), func(ctx context.Context) error {
			var err error
			rec, err = a.Controller.OnRecordCreated(ctx, req)
			return err
		})
		if err != nil {
			return fail(c, "Failed to stage record", err)
		}

		return created(c, fiber.Map{"record": rec})
	}
}

// UpdateRecord stages an edit of a held record
func UpdateRecord(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return badRequest(c, "Invalid record id")
		}

		var req models.UpdateRecordRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}

		var rec models.Record
		err = a.Coordinator.Do(c.UserContext(), func(ctx context.Context) error {
			var err error
			rec, err = a.Controller.OnRecordUpdated(ctx, id, req)
			return err
		})
		if err != nil {
			return fail(c, "Failed to update record", err)
		}

		return success(c, fiber.Map{"record": rec})
	}
}

func DeleteRecord(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return badRequest(c, "Invalid record id")
		}

		err = a.Coordinator.Do(c.UserContext(), func(ctx context.Context) error {
			return a.Controller.OnRecordDeleted(ctx, id)
		})
		if err != nil {
			return fail(c, "Failed to delete record", err)
		}

		return success(c, fiber.Map{"success": true})
	}
}

// Save persists the working set and returns what the store holds afterwards
func Save(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var records []models.Record
		err := a.Coordinator.Do(c.UserContext(), func(ctx context.Context) error {
			err := a.Controller.OnSave(ctx)
			records = a.Model.Records()
			return err
		})
		if err != nil {
			return fail(c, "Error saving to the database", err)
		}

		return success(c, fiber.Map{"records": records})
	}
}

func Load(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var records []models.Record
		err := a.Coordinator.Do(c.UserContext(), func(ctx context.Context) error {
			if err := a.Model.Load(ctx); err != nil {
				return err
			}
			records = a.Model.Records()
			return nil
		})
		if err != nil {
			return fail(c, "Error loading data from database", err)
		}

		return success(c, fiber.Map{"records": records})
	}
}

// GetLogs returns the latest audit entries, newest first
func GetLogs(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := defaultLogLimit
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				return badRequest(c, "limit must be a non-negative integer")
			}
			limit = n
		}

		var entries []models.LogEntry
		err := a.Coordinator.Do(c.UserContext(), func(ctx context.Context) error {
			logs, err := a.Logs()
			if err != nil {
				return err
			}
			entries, err = logs.GetEntries(ctx, limit)
			return err
		})
		if err != nil {
			return fail(c, "Failed to read audit log", err)
		}

		return success(c, fiber.Map{"logs": entries})
	}
}
