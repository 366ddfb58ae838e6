package inventory

import (
	"testing"

	"lager-backend/internal/apperr"
	"lager-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextArticleID(t *testing.T) {
	cases := []struct {
		name string
		ids  []string
		want string
	}{
		{"empty catalog", nil, "00001"},
		{"sequential", []string{"00001", "00002", "00003"}, "00004"},
		{"gap", []string{"00001", "00003"}, "00004"},
		{"non numeric ignored", []string{"ABC", "", "00002", "x-9"}, "00003"},
		{"only non numeric", []string{"foo"}, "00001"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			articles := make([]models.Article, 0, len(tc.ids))
			for _, id := range tc.ids {
				articles = append(articles, models.Article{ID: id})
			}
			assert.Equal(t, tc.want, NextArticleID(articles))
		})
	}
}

func TestAddArticleUsesMaxNotCount(t *testing.T) {
	doc := &models.Document{}
	for _, name := range []string{"A", "B", "C"} {
		_, err := addArticle(doc, NewArticle{Name: name})
		require.NoError(t, err)
	}
	_, err := removeArticle(doc, "00002")
	require.NoError(t, err)

	a, err := addArticle(doc, NewArticle{Name: "D", ArticleNumber: " D-1 ", Quantity: 3, MinimumQuantity: 1})

	require.NoError(t, err)
	assert.Equal(t, "00004", a.ID)
	assert.Equal(t, "D-1", a.ArticleNumber)
	assert.Equal(t, 3, a.Quantity)
}

func TestAddArticleValidation(t *testing.T) {
	doc := &models.Document{Articles: []models.Article{{ID: "00001", Name: "Handschuhe"}}}

	_, err := addArticle(doc, NewArticle{Name: "  "})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	_, err = addArticle(doc, NewArticle{Name: "HANDSCHUHE"})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	assert.Len(t, doc.Articles, 1)
}

func TestUpdateArticleAppliesOnlyPresentFields(t *testing.T) {
	doc := &models.Document{Articles: []models.Article{
		{ID: "00001", ArticleNumber: "HS-1", Name: "Handschuhe", Quantity: 10, MinimumQuantity: 5},
		{ID: "00002", Name: "Kabel"},
	}}
	minQty := 8

	a, err := updateArticle(doc, "00001", ArticlePatch{MinimumQuantity: &minQty})

	require.NoError(t, err)
	assert.Equal(t, models.Article{ID: "00001", ArticleNumber: "HS-1", Name: "Handschuhe", Quantity: 10, MinimumQuantity: 8}, a)
	assert.Equal(t, a, doc.Articles[0])
}

func TestUpdateArticleErrors(t *testing.T) {
	doc := &models.Document{Articles: []models.Article{
		{ID: "00001", Name: "Handschuhe"},
		{ID: "00002", Name: "Kabel"},
	}}
	empty, taken, own := "", "kabel", "HANDSCHUHE"

	_, err := updateArticle(doc, "00009", ArticlePatch{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = updateArticle(doc, "Handschuhe", ArticlePatch{})
	assert.ErrorIs(t, err, apperr.ErrNotFound, "update addresses by id only")

	_, err = updateArticle(doc, "00001", ArticlePatch{Name: &empty})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	_, err = updateArticle(doc, "00001", ArticlePatch{Name: &taken})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	a, err := updateArticle(doc, "00001", ArticlePatch{Name: &own})
	require.NoError(t, err)
	assert.Equal(t, "HANDSCHUHE", a.Name)
}

func TestRemoveArticleByNameCaseInsensitive(t *testing.T) {
	doc := &models.Document{
		Articles: []models.Article{{ID: "00001", Name: "Handschuhe"}, {ID: "00002", Name: "Kabel"}},
		Bookings: []models.Booking{{ArticleID: "00001", Change: 1}},
	}

	removed, err := removeArticle(doc, "handschuhe")
	require.NoError(t, err)
	assert.Equal(t, "00001", removed.ID)
	assert.Len(t, doc.Articles, 1)
	assert.Len(t, doc.Bookings, 1, "history is kept")

	_, err = removeArticle(doc, "handschuhe")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
