package dashboard

import (
	"time"

	"lager-backend/internal/apperr"
	"lager-backend/internal/auth"
	"lager-backend/internal/inventory"
	"lager-backend/internal/ledger"

	"github.com/gofiber/fiber/v2"
)

type BadgesResponse struct {
	Consume  int    `json:"consume"`
	Purchase int    `json:"purchase"`
	Window   string `json:"window"`
	From     string `json:"from"`
	To       string `json:"to"`
}

func badgesResponse(counts ledger.Counts, now time.Time) BadgesResponse {
	return BadgesResponse{
		Consume:  counts.Consume,
		Purchase: counts.Purchase,
		Window:   inventory.BadgeWindow.String(),
		From:     now.Add(-inventory.BadgeWindow).Format(time.RFC3339),
		To:       now.Format(time.RFC3339),
	}
}

// GET /api/badges: Buchungen der letzten 24h je Typ.
// Braucht nur eine gültige Session.
func BadgesHandler(svc *inventory.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := auth.Identity(c); err != nil {
			return err
		}
		counts, now, err := svc.ActivityBadgesAt(c.UserContext())
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(badgesResponse(counts, now))
	}
}
