package inventory

import (
	"fmt"

	"lager-backend/internal/apperr"
	"lager-backend/internal/audit"
	"lager-backend/internal/auth"

	"github.com/gofiber/fiber/v2"
)

type CreateArticleRequest struct {
	ArtNr          string    `json:"artNr"`
	Name           string    `json:"name"`
	Bestand        *Quantity `json:"bestand"`
	MindestBestand *Quantity `json:"mindestBestand"`

	// Felder des alten Formulars (POST /api/add): id = Artikelnummer
	LegacyID       string    `json:"id"`
	LegacyQuantity *Quantity `json:"quantity"`
}

func (r CreateArticleRequest) toNewArticle() NewArticle {
	in := NewArticle{ArticleNumber: r.ArtNr, Name: r.Name}
	if in.ArticleNumber == "" {
		in.ArticleNumber = r.LegacyID
	}
	if r.Bestand != nil {
		in.Quantity = int(*r.Bestand)
	} else if r.LegacyQuantity != nil {
		in.Quantity = int(*r.LegacyQuantity)
	}
	if r.MindestBestand != nil {
		in.MinimumQuantity = int(*r.MindestBestand)
	}
	return in
}

type UpdateArticleRequest struct {
	ArtNr          *string   `json:"artNr"`
	Name           *string   `json:"name"`
	Bestand        *Quantity `json:"bestand"`
	MindestBestand *Quantity `json:"mindestBestand"`
}

type RemoveArticleRequest struct {
	Name string `json:"name"`
}

// GET /api/articles (viewArticles)
func ListArticlesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.Identity(c)
		if err != nil {
			return err
		}
		articles, err := svc.ListArticles(c.UserContext(), actor)
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(articles)
	}
}

// GET /api/articles/:key, key = ID oder Name
func GetArticleHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.Identity(c)
		if err != nil {
			return err
		}
		a, err := svc.GetArticle(c.UserContext(), actor, c.Params("key"))
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(a)
	}
}

// POST /api/articles und POST /api/add (addArticle)
func CreateArticleHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.Identity(c)
		if err != nil {
			return err
		}

		var body CreateArticleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Ungültige Daten")
		}

		a, err := svc.AddArticle(c.UserContext(), actor, body.toNewArticle())
		if err != nil {
			return apperr.ToFiber(err)
		}

		audit.WriteLog(audit.LogOptions{
			User: actor, EntityType: "article", EntityID: a.ID,
			Action: "create", Description: "Artikel angelegt", After: a,
		})
		return c.Status(fiber.StatusCreated).JSON(a)
	}
}

// PUT /api/articles/:id (addArticle). Bestandsänderungen hier erzeugen keine Buchung.
func UpdateArticleHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.Identity(c)
		if err != nil {
			return err
		}

		var body UpdateArticleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Ungültige Daten")
		}

		change, err := svc.UpdateArticle(c.UserContext(), actor, c.Params("id"), ArticlePatch{
			ArticleNumber:   body.ArtNr,
			Name:            body.Name,
			Quantity:        body.Bestand.intPtr(),
			MinimumQuantity: body.MindestBestand.intPtr(),
		})
		if err != nil {
			return apperr.ToFiber(err)
		}

		desc := "Artikel geändert"
		if change.QuantityChanged() {
			desc = fmt.Sprintf("Bestand ohne Buchung gesetzt: %d -> %d", change.Before.Quantity, change.After.Quantity)
		}
		audit.WriteLog(audit.LogOptions{
			User: actor, EntityType: "article", EntityID: change.After.ID,
			Action: "update", Description: desc, Before: change.Before, After: change.After,
		})
		return c.JSON(change.After)
	}
}

// DELETE /api/articles/:key (removeArticle)
func DeleteArticleHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return handleRemove(c, svc, c.Params("key"))
	}
}

// DELETE /api/remove {name}, alte Route des Web-Clients
func RemoveArticleHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RemoveArticleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Ungültige Daten")
		}
		return handleRemove(c, svc, body.Name)
	}
}

func handleRemove(c *fiber.Ctx, svc *Service, key string) error {
	actor, err := auth.Identity(c)
	if err != nil {
		return err
	}
	a, err := svc.RemoveArticle(c.UserContext(), actor, key)
	if err != nil {
		return apperr.ToFiber(err)
	}

	audit.WriteLog(audit.LogOptions{
		User: actor, EntityType: "article", EntityID: a.ID,
		Action: "delete", Description: "Artikel gelöscht", Before: a,
	})
	return c.JSON(fiber.Map{"success": true, "removed": a})
}
