package handlers

import (
	"time"

	"roster/app"

	"github.com/gofiber/fiber/v2"
)

// Health reports liveness and whether the shared connection is open.
// It reads no working-set state, so it never waits on the coordinator.
func Health(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := "ok"
		if !a.DB.IsOpen() {
			status = "degraded"
		}

		return c.JSON(fiber.Map{
			"status":    status,
			"backend":   a.Backend,
			"connected": a.DB.IsOpen(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
