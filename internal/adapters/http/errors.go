package http

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/meetpoint/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Error     string `json:"error"` // Human-readable message
	Code      string `json:"code"`  // missing_input, invalid_location, internal_error, ...
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID and records the
// code for the access log.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	c.Locals(localErrorCode, code)
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Error:     message,
		Code:      code,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, http.StatusBadRequest, "bad_request", msg)
}

// errFromDomain maps a pipeline error onto its status and code. Only the
// error's public message is exposed; causes stay in the logs.
func errFromDomain(c *fiber.Ctx, err error) error {
	msg := "internal error"
	var de *domain.Error
	if errors.As(err, &de) && de.Message != "" {
		msg = de.Message
	}
	return newError(c, domain.HTTPStatus(err), string(domain.KindOf(err)), msg)
}
