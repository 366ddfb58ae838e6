package inventory

import (
	"strings"

	"lager-backend/internal/apperr"
	"lager-backend/internal/audit"
	"lager-backend/internal/auth"
	"lager-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GET /api/articles/export.xlsx (viewArticles)
func ExportArticlesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.Identity(c)
		if err != nil {
			return err
		}
		articles, err := svc.ListArticles(c.UserContext(), actor)
		if err != nil {
			return apperr.ToFiber(err)
		}
		return sendWorkbook(c, "Artikel", "artikel.xlsx", articles)
	}
}

// GET /api/warnlist/export.xlsx (viewWarnlist)
func ExportWarnlistHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.Identity(c)
		if err != nil {
			return err
		}
		list, err := svc.Warnlist(c.UserContext(), actor)
		if err != nil {
			return apperr.ToFiber(err)
		}
		return sendWorkbook(c, "Warnliste", "warnliste.xlsx", list)
	}
}

func sendWorkbook(c *fiber.Ctx, sheet, filename string, articles []models.Article) error {
	f, err := BuildArticleWorkbook(sheet, articles)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Excel-Datei konnte nicht erstellt werden")
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Excel-Datei konnte nicht erstellt werden")
	}
	c.Attachment(filename)
	return c.Send(buf.Bytes())
}

// POST /api/articles/import (addArticle), multipart-Feld "file"
func ImportArticlesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.Identity(c)
		if err != nil {
			return err
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Datei fehlt")
		}
		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return fiber.NewError(fiber.StatusBadRequest, "Nur .xlsx-Dateien erlaubt")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Datei konnte nicht geöffnet werden")
		}
		defer file.Close()

		rows, err := ParseArticleWorkbook(file)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		res, err := svc.ImportArticles(c.UserContext(), actor, rows)
		if err != nil {
			return apperr.ToFiber(err)
		}

		for _, a := range res.Created {
			audit.WriteLog(audit.LogOptions{
				User: actor, EntityType: "article", EntityID: a.ID,
				Action: "import", Description: "Artikel importiert", After: a,
			})
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}
