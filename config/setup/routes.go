package setup

import (
	"roster/app"
	"roster/handlers"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(fiberApp *fiber.App, application *app.App) {
	fiberApp.Get("/health", handlers.Health(application))

	api := fiberApp.Group("/api")

	api.Get("/records", handlers.ListRecords(application))
	api.Get("/records/:id", handlers.GetRecord(application))
	api.Post("/records", handlers.CreateRecord(application))
	api.Put("/records/:id", handlers.UpdateRecord(application))
	api.Delete("/records/:id", handlers.DeleteRecord(application))
	api.Post("/save", handlers.Save(application))
	api.Post("/load", handlers.Load(application))
	api.Get("/logs", handlers.GetLogs(application))
}
