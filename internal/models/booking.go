package models

import (
	"fmt"
	"strings"
	"time"
)

type BookingType string

const (
	BookingConsume  BookingType = "consume"
	BookingPurchase BookingType = "purchase"
)

// Booking: unveränderlicher Ledger-Eintrag, wird nie aktualisiert oder gelöscht.
type Booking struct {
	Timestamp         time.Time   `json:"timestamp"`
	ArticleID         string      `json:"articleId"`
	Change            int         `json:"change"`
	ResultingQuantity int         `json:"newBestand"`
	Type              BookingType `json:"type"`
	User              string      `json:"user"`
}

// ParseBookingType: akzeptiert auch die deutschen Routennamen des Web-Clients (verbrauch, einkauf)
func ParseBookingType(s string) (BookingType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "consume", "verbrauch":
		return BookingConsume, nil
	case "purchase", "einkauf":
		return BookingPurchase, nil
	default:
		return "", fmt.Errorf("unbekannter Buchungstyp %q", s)
	}
}

// SignedChange: Einkauf erhöht, Verbrauch verringert den Bestand
func (t BookingType) SignedChange(magnitude int) (int, error) {
	switch t {
	case BookingPurchase:
		return magnitude, nil
	case BookingConsume:
		return -magnitude, nil
	default:
		return 0, fmt.Errorf("unbekannter Buchungstyp %q", string(t))
	}
}

// Capability: benötigte Berechtigung für diesen Buchungstyp
func (t BookingType) Capability() (Capability, error) {
	switch t {
	case BookingConsume:
		return CapConsume, nil
	case BookingPurchase:
		return CapPurchase, nil
	default:
		return 0, fmt.Errorf("unbekannter Buchungstyp %q", string(t))
	}
}
