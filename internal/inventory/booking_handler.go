package inventory

import (
	"strings"
	"time"

	"lager-backend/internal/apperr"
	"lager-backend/internal/auth"
	"lager-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type BookingRequest struct {
	Article string    `json:"article"`
	Name    string    `json:"name"` // alter Web-Client schickt den Artikelnamen
	Type    string    `json:"type"`
	Amount  *Quantity `json:"amount"`
}

func (r BookingRequest) articleKey() string {
	if key := strings.TrimSpace(r.Article); key != "" {
		return key
	}
	return strings.TrimSpace(r.Name)
}

type BookingResponse struct {
	Booking models.Booking `json:"booking"`
	Bestand int            `json:"bestand"`
}

// POST /api/bookings {article, type, amount}
func CreateBookingHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body BookingRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Ungültige Daten")
		}
		typ, err := models.ParseBookingType(body.Type)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return book(c, svc, typ, body)
	}
}

// POST /api/verbrauch, /api/einkauf, /api/consume, /api/purchase {name, amount}
func BookTypeHandler(svc *Service, typ models.BookingType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body BookingRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Ungültige Daten")
		}
		return book(c, svc, typ, body)
	}
}

func book(c *fiber.Ctx, svc *Service, typ models.BookingType, body BookingRequest) error {
	actor, err := auth.Identity(c)
	if err != nil {
		return err
	}
	if body.Amount == nil {
		return fiber.NewError(fiber.StatusBadRequest, "amount ist Pflicht")
	}

	b, err := svc.Book(c.UserContext(), actor, body.articleKey(), typ, int(*body.Amount))
	if err != nil {
		return apperr.ToFiber(err)
	}
	return c.JSON(BookingResponse{Booking: b, Bestand: b.ResultingQuantity})
}

// GET /api/bookings?article=00001&since=2025-04-01 (viewArticles)
// since als Datum (YYYY-MM-DD, UTC) oder RFC3339
func ListBookingsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.Identity(c)
		if err != nil {
			return err
		}

		f := BookingFilter{ArticleKey: strings.TrimSpace(c.Query("article"))}
		if s := strings.TrimSpace(c.Query("since")); s != "" {
			since, err := parseSince(s)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "since muss YYYY-MM-DD oder RFC3339 sein")
			}
			f.Since = since
		}

		bookings, err := svc.Bookings(c.UserContext(), actor, f)
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(bookings)
	}
}

func parseSince(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
