package models

// Article: lagerfähiger Artikel. Quantity darf negativ werden, es gibt keine Untergrenze.
type Article struct {
	ID              string `json:"id"`
	ArticleNumber   string `json:"artNr"`
	Name            string `json:"name"`
	Quantity        int    `json:"bestand"`
	MinimumQuantity int    `json:"mindestBestand"`
}

// BelowMinimum: true, wenn der Artikel auf die Warnliste gehört
func (a Article) BelowMinimum() bool {
	return a.Quantity < a.MinimumQuantity
}
