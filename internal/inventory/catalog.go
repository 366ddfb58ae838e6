package inventory

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"lager-backend/internal/apperr"
	"lager-backend/internal/models"
)

const articleIDWidth = 5

type NewArticle struct {
	ArticleNumber   string
	Name            string
	Quantity        int
	MinimumQuantity int
}

// ArticlePatch: nil-Felder bleiben unverändert
type ArticlePatch struct {
	ArticleNumber   *string
	Name            *string
	Quantity        *int
	MinimumQuantity *int
}

// NextArticleID: größte numerische ID + 1, auf fünf Stellen aufgefüllt.
// Nicht-numerische oder leere IDs werden ignoriert.
func NextArticleID(articles []models.Article) string {
	maxID := 0
	for _, a := range articles {
		n, err := strconv.Atoi(strings.TrimSpace(a.ID))
		if err != nil || n < 0 {
			continue
		}
		maxID = max(maxID, n)
	}
	return fmt.Sprintf("%0*d", articleIDWidth, maxID+1)
}

func nameTaken(doc *models.Document, name, exceptID string) bool {
	for _, a := range doc.Articles {
		if a.ID != exceptID && strings.EqualFold(a.Name, name) {
			return true
		}
	}
	return false
}

func addArticle(doc *models.Document, in NewArticle) (models.Article, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.Article{}, apperr.InvalidArgument("Name ist Pflicht")
	}
	if nameTaken(doc, name, "") {
		return models.Article{}, apperr.Conflict("Artikel %q existiert bereits", name)
	}

	a := models.Article{
		ID:              NextArticleID(doc.Articles),
		ArticleNumber:   strings.TrimSpace(in.ArticleNumber),
		Name:            name,
		Quantity:        in.Quantity,
		MinimumQuantity: in.MinimumQuantity,
	}
	doc.Articles = append(doc.Articles, a)
	return a, nil
}

func updateArticle(doc *models.Document, id string, p ArticlePatch) (models.Article, error) {
	i := -1
	for j, a := range doc.Articles {
		if a.ID == id {
			i = j
			break
		}
	}
	if i < 0 {
		return models.Article{}, apperr.NotFound("Artikel %q", id)
	}

	a := doc.Articles[i]
	if p.ArticleNumber != nil {
		a.ArticleNumber = strings.TrimSpace(*p.ArticleNumber)
	}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return models.Article{}, apperr.InvalidArgument("Name darf nicht leer sein")
		}
		if nameTaken(doc, name, a.ID) {
			return models.Article{}, apperr.Conflict("Artikel %q existiert bereits", name)
		}
		a.Name = name
	}
	if p.Quantity != nil {
		a.Quantity = *p.Quantity
	}
	if p.MinimumQuantity != nil {
		a.MinimumQuantity = *p.MinimumQuantity
	}
	doc.Articles[i] = a
	return a, nil
}

// removeArticle löscht nur den Artikel. Seine Buchungen bleiben als Historie stehen.
func removeArticle(doc *models.Document, key string) (models.Article, error) {
	i := doc.FindArticle(key)
	if i < 0 {
		return models.Article{}, apperr.NotFound("Artikel %q", key)
	}
	removed := doc.Articles[i]
	doc.Articles = slices.Delete(doc.Articles, i, i+1)
	return removed, nil
}
