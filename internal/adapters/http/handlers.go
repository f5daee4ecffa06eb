package http

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/meetpoint/internal/core/domain"
)

// MeetupHandler plans a meetup for two postal codes.
//
// POST /v1/meetups {"postalCode1": "...", "postalCode2": "...", "preferences": "..."}
func MeetupHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req domain.PlanRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		ctx := c.UserContext()
		resp, err := deps.Meetups.Plan(ctx, req)
		if err != nil {
			LoggerFromCtx(ctx).Warn("meetup plan failed",
				slog.String("kind", string(domain.KindOf(err))),
				slog.String("error", err.Error()),
			)
			return errFromDomain(c, err)
		}

		c.Locals(localPlanID, resp.ID)
		c.Set(fiber.HeaderCacheControl, "no-store")
		return c.JSON(resp)
	}
}
