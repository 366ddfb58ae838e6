package inventory

import (
	"testing"

	"lager-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestArticleWorkbookRoundTrip(t *testing.T) {
	articles := []models.Article{
		{ID: "00001", ArticleNumber: "HS-100", Name: "Handschuhe", Quantity: 4, MinimumQuantity: 5},
		{ID: "00002", Name: "Kopierpapier", Quantity: -2, MinimumQuantity: 0},
	}

	f, err := BuildArticleWorkbook("Artikel", articles)
	require.NoError(t, err)
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	rows, err := ParseArticleWorkbook(buf)
	require.NoError(t, err)
	assert.Equal(t, []ImportRow{
		{Line: 2, Article: NewArticle{ArticleNumber: "HS-100", Name: "Handschuhe", Quantity: 4, MinimumQuantity: 5}},
		{Line: 3, Article: NewArticle{Name: "Kopierpapier", Quantity: -2}},
	}, rows)
}

func TestParseArticleWorkbookKeepsNamelessRows(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	rows := [][]any{
		{"KB-1", "Kabelbinder", 40, 10},
		{},
		{"X-9", "", 5, 1},
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	got, err := ParseArticleWorkbook(buf)

	require.NoError(t, err)
	assert.Equal(t, []ImportRow{
		{Line: 1, Article: NewArticle{ArticleNumber: "KB-1", Name: "Kabelbinder", Quantity: 40, MinimumQuantity: 10}},
		{Line: 3, Article: NewArticle{ArticleNumber: "X-9"}},
	}, got)
}
