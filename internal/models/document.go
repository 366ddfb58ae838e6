package models

import (
	"slices"
	"strings"
)

// Document: gesamter persistierter Zustand. Committete Dokumente sind read-only,
// Schreiber arbeiten immer auf einem Clone.
type Document struct {
	Users    []User    `json:"users"`
	Articles []Article `json:"articles"`
	Bookings []Booking `json:"bookings"`
}

// Clone: tiefe Kopie (alle Elemente sind reine Werte)
func (d *Document) Clone() *Document {
	if d == nil {
		return &Document{}
	}
	return &Document{
		Users:    slices.Clone(d.Users),
		Articles: slices.Clone(d.Articles),
		Bookings: slices.Clone(d.Bookings),
	}
}

// Normalize: nil-Slices durch leere ersetzen, damit JSON immer Arrays enthält
func (d *Document) Normalize() {
	if d.Users == nil {
		d.Users = []User{}
	}
	if d.Articles == nil {
		d.Articles = []Article{}
	}
	if d.Bookings == nil {
		d.Bookings = []Booking{}
	}
}

// FindUser: Index des Users oder -1
func (d *Document) FindUser(username string) int {
	return slices.IndexFunc(d.Users, func(u User) bool {
		return u.Username == username
	})
}

// FindArticle: zuerst exakte ID, danach Name ohne Groß-/Kleinschreibung
func (d *Document) FindArticle(key string) int {
	key = strings.TrimSpace(key)
	if key == "" {
		return -1
	}
	if i := slices.IndexFunc(d.Articles, func(a Article) bool { return a.ID == key }); i >= 0 {
		return i
	}
	return slices.IndexFunc(d.Articles, func(a Article) bool {
		return strings.EqualFold(a.Name, key)
	})
}
