package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Version is reported by the health endpoint. Set at build time via -ldflags.
var Version = "dev"

// HealthHandler returns a basic liveness check.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).String(),
			"version": Version,
		})
	}
}

// storagePinger is implemented by limiter storages that can report connectivity.
type storagePinger interface {
	Ping(ctx context.Context) error
}

// ReadyHandler checks the planner, NATS and limiter storage.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		checks := make(map[string]string)
		allOK := true

		// Planner
		if deps.Meetups != nil {
			checks["planner"] = "ok"
		} else {
			checks["planner"] = "not configured"
			allOK = false
		}

		// NATS
		if deps.NATS != nil {
			if deps.NATS.IsConnected() {
				checks["nats"] = "ok"
			} else {
				checks["nats"] = "disconnected"
				allOK = false
			}
		} else {
			checks["nats"] = "not configured"
		}

		// Rate limiter storage
		switch s := deps.Limiter.(type) {
		case nil:
			checks["limiter"] = "memory"
		case storagePinger:
			if err := s.Ping(ctx); err != nil {
				checks["limiter"] = "error: " + err.Error()
				allOK = false
			} else {
				checks["limiter"] = "ok"
			}
		default:
			checks["limiter"] = "ok"
		}

		status := "ready"
		code := fiber.StatusOK
		if !allOK {
			status = "not ready"
			code = fiber.StatusServiceUnavailable
		}

		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	}
}
