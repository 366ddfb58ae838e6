// Package ledger verwaltet das Buchungsjournal. Buchungen werden nur angehängt,
// nie geändert oder gelöscht.
package ledger

import (
	"iter"
	"time"

	"lager-backend/internal/models"
)

// Append hängt eine Buchung an das Dokument an. Der Zeitstempel wird nie
// kleiner als der der letzten Buchung, damit die Einfügereihenfolge auch
// zeitlich sortiert bleibt. Der Aufrufer muss article.Quantity vorher
// angepasst haben; newBestand wird daraus übernommen.
func Append(doc *models.Document, article models.Article, change int, typ models.BookingType, actor string, at time.Time) models.Booking {
	if n := len(doc.Bookings); n > 0 {
		if last := doc.Bookings[n-1].Timestamp; at.Before(last) {
			at = last
		}
	}
	b := models.Booking{
		Timestamp:         at,
		ArticleID:         article.ID,
		Change:            change,
		ResultingQuantity: article.Quantity,
		Type:              typ,
		User:              actor,
	}
	doc.Bookings = append(doc.Bookings, b)
	return b
}

// ListSince liefert alle Buchungen mit timestamp >= cutoff.
func ListSince(bookings []models.Booking, cutoff time.Time) iter.Seq[models.Booking] {
	return func(yield func(models.Booking) bool) {
		for _, b := range bookings {
			if b.Timestamp.Before(cutoff) {
				continue
			}
			if !yield(b) {
				return
			}
		}
	}
}

// ForArticle liefert die Historie eines Artikels, auch wenn er bereits gelöscht ist.
func ForArticle(bookings []models.Booking, articleID string) iter.Seq[models.Booking] {
	return func(yield func(models.Booking) bool) {
		for _, b := range bookings {
			if b.ArticleID != articleID {
				continue
			}
			if !yield(b) {
				return
			}
		}
	}
}

// SumChanges addiert alle Deltas einer Sequenz.
func SumChanges(seq iter.Seq[models.Booking]) int {
	sum := 0
	for b := range seq {
		sum += b.Change
	}
	return sum
}

// Counts: Anzahl Buchungen je Typ
type Counts struct {
	Consume  int `json:"consume"`
	Purchase int `json:"purchase"`
}

// CountWindow zählt Buchungen mit from <= timestamp <= to.
func CountWindow(bookings []models.Booking, from, to time.Time) Counts {
	var c Counts
	for b := range ListSince(bookings, from) {
		if b.Timestamp.After(to) {
			continue
		}
		switch b.Type {
		case models.BookingConsume:
			c.Consume++
		case models.BookingPurchase:
			c.Purchase++
		}
	}
	return c
}
