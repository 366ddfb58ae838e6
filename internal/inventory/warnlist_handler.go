package inventory

import (
	"lager-backend/internal/apperr"
	"lager-backend/internal/auth"

	"github.com/gofiber/fiber/v2"
)

// GET /api/warnlist (viewWarnlist)
func WarnlistHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.Identity(c)
		if err != nil {
			return err
		}
		list, err := svc.Warnlist(c.UserContext(), actor)
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(list)
	}
}
