package inventory

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"lager-backend/internal/models"

	"github.com/xuri/excelize/v2"
)

var sheetHeader = []any{"ID", "Artikelnummer", "Name", "Bestand", "Mindestbestand"}

// BuildArticleWorkbook schreibt Artikel in eine Tabelle. Zeilen unter
// Mindestbestand werden rot hinterlegt.
func BuildArticleWorkbook(sheet string, articles []models.Article) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := writeArticleSheet(f, sheet, articles); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func writeArticleSheet(f *excelize.File, sheet string, articles []models.Article) error {
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	warnStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFC7CE"}},
	})
	if err != nil {
		return err
	}

	if err := f.SetSheetRow(sheet, "A1", &sheetHeader); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "E1", headerStyle); err != nil {
		return err
	}

	for i, a := range articles {
		row := i + 2
		cell := fmt.Sprintf("A%d", row)
		values := []any{a.ID, a.ArticleNumber, a.Name, a.Quantity, a.MinimumQuantity}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
		if a.BelowMinimum() {
			if err := f.SetCellStyle(sheet, cell, fmt.Sprintf("E%d", row), warnStyle); err != nil {
				return err
			}
		}
	}
	return f.SetColWidth(sheet, "C", "C", 32)
}

// ImportRow: eine Tabellenzeile mit ihrer Zeilennummer (1-basiert, wie in Excel)
type ImportRow struct {
	Line    int
	Article NewArticle
}

// ParseArticleWorkbook liest die erste Tabelle mit den Spalten
// Artikelnummer, Name, Bestand, Mindestbestand. Eine Kopfzeile wird erkannt
// und übersprungen, ebenso eine führende ID-Spalte aus dem eigenen Export.
// Komplett leere Zeilen entfallen, Zeilen ohne Name werden mit leerem Namen
// weitergegeben und beim Import als übersprungen gemeldet.
func ParseArticleWorkbook(r io.Reader) ([]ImportRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("excel-datei nicht lesbar: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("excel-datei enthält keine Tabelle")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("tabelle nicht lesbar: %w", err)
	}
	if len(rows) == 0 {
		return []ImportRow{}, nil
	}

	skip, offset := 0, 0
	if header := rows[0]; slices.ContainsFunc(header, isNameHeader) {
		skip = 1
		if strings.EqualFold(strings.TrimSpace(header[0]), "id") {
			offset = 1
		}
	}

	out := make([]ImportRow, 0, len(rows))
	for i, row := range rows[skip:] {
		line := i + skip + 1
		cols := make([]string, 4)
		for j := range cols {
			if offset+j < len(row) {
				cols[j] = strings.TrimSpace(row[offset+j])
			}
		}
		if !slices.ContainsFunc(cols, func(c string) bool { return c != "" }) {
			continue
		}
		if cols[1] == "" {
			out = append(out, ImportRow{Line: line, Article: NewArticle{ArticleNumber: cols[0]}})
			continue
		}
		qty, err := parseCellInt(cols[2])
		if err != nil {
			return nil, fmt.Errorf("zeile %d: %w", line, err)
		}
		minQty, err := parseCellInt(cols[3])
		if err != nil {
			return nil, fmt.Errorf("zeile %d: %w", line, err)
		}
		out = append(out, ImportRow{
			Line:    line,
			Article: NewArticle{ArticleNumber: cols[0], Name: cols[1], Quantity: qty, MinimumQuantity: minQty},
		})
	}
	return out, nil
}

func isNameHeader(cell string) bool {
	return strings.EqualFold(strings.TrimSpace(cell), "name")
}

func parseCellInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q ist keine ganze Zahl", s)
	}
	return n, nil
}
