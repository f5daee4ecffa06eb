package http

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Locals keys the access log reads back after the handler ran.
const (
	localErrorCode = "error_code"
	localPlanID    = "plan_id"
)

// AccessLogMiddleware writes one line per request through the request-scoped
// logger. Plan requests carry the plan id on success and the error code
// (missing_input, search_unavailable, ...) on failure.
func AccessLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		method := c.Method()
		path := c.Path()

		err := c.Next()

		status := c.Response().StatusCode()
		attrs := []slog.Attr{
			slog.String("method", method),
			slog.String("path", path),
			slog.String("route", c.Route().Path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.Int("bytes_out", len(c.Response().Body())),
		}
		if id, ok := c.Locals(localPlanID).(string); ok && id != "" {
			attrs = append(attrs, slog.String("plan_id", id))
		}
		if code, ok := c.Locals(localErrorCode).(string); ok && code != "" {
			attrs = append(attrs, slog.String("code", code))
		}

		level := slog.LevelInfo
		switch {
		case err != nil:
			attrs = append(attrs, slog.String("error", err.Error()))
			level = slog.LevelError
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}

		ctx := c.UserContext()
		LoggerFromCtx(ctx).LogAttrs(ctx, level, "request", attrs...)
		return err
	}
}
