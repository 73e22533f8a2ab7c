package handlers

import (
	"errors"
	"log/slog"

	"roster/coordinator"
	"roster/services"
	"roster/storage"
	"roster/validator"

	"github.com/gofiber/fiber/v2"
)

func success(c *fiber.Ctx, data fiber.Map) error {
	return c.JSON(data)
}

func created(c *fiber.Ctx, data fiber.Map) error {
	return c.Status(fiber.StatusCreated).JSON(data)
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
}

func notFound(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": message})
}

// fail maps err onto a status code. Unexpected errors are logged with the request id.
func fail(c *fiber.Ctx, message string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": verrs,
		})
	}

	code := statusFor(err)
	if code >= fiber.StatusInternalServerError {
		requestID := ""
		if id, ok := c.Locals("requestID").(string); ok {
			requestID = id
		}

		slog.Error("server error",
			"request_id", requestID,
			"method", c.Method(),
			"path", c.Path(),
			"message", message,
			"error", err,
		)
	}

	return c.Status(code).JSON(fiber.Map{"error": message})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrConnectionUnavailable), errors.Is(err, coordinator.ErrStopped):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, storage.ErrRecordNotFound), errors.Is(err, services.ErrRecordNotHeld):
		return fiber.StatusNotFound
	case errors.Is(err, storage.ErrUnsupportedBackend):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
