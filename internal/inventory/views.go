package inventory

import (
	"time"

	"lager-backend/internal/ledger"
	"lager-backend/internal/models"
)

// BadgeWindow: rollierendes Fenster der Aktivitäts-Badges
const BadgeWindow = 24 * time.Hour

// Warnlist: alle Artikel mit bestand < mindestBestand, in Katalogreihenfolge
func Warnlist(articles []models.Article) []models.Article {
	out := []models.Article{}
	for _, a := range articles {
		if a.BelowMinimum() {
			out = append(out, a)
		}
	}
	return out
}

// ActivityBadges zählt Buchungen je Typ im Fenster [now-24h, now].
func ActivityBadges(bookings []models.Booking, now time.Time) ledger.Counts {
	return ledger.CountWindow(bookings, now.Add(-BadgeWindow), now)
}
