package models

import "fmt"

// Capability: geschlossene Menge der Berechtigungen
type Capability int

const (
	CapConsume Capability = iota + 1
	CapPurchase
	CapAddArticle
	CapRemoveArticle
	CapViewArticles
	CapViewWarnlist
	CapManageUsers
)

// AllCapabilities in Anzeigereihenfolge
var AllCapabilities = []Capability{
	CapConsume,
	CapPurchase,
	CapAddArticle,
	CapRemoveArticle,
	CapViewArticles,
	CapViewWarnlist,
	CapManageUsers,
}

func (c Capability) String() string {
	switch c {
	case CapConsume:
		return "consume"
	case CapPurchase:
		return "purchase"
	case CapAddArticle:
		return "addArticle"
	case CapRemoveArticle:
		return "removeArticle"
	case CapViewArticles:
		return "viewArticles"
	case CapViewWarnlist:
		return "viewWarnlist"
	case CapManageUsers:
		return "manageUsers"
	default:
		return fmt.Sprintf("capability(%d)", int(c))
	}
}

// Permissions: Berechtigungs-Map eines Users, so wie sie in der DB-Datei steht
type Permissions struct {
	Consume       bool `json:"consume"`
	Purchase      bool `json:"purchase"`
	AddArticle    bool `json:"addArticle"`
	RemoveArticle bool `json:"removeArticle"`
	ViewArticles  bool `json:"viewArticles"`
	ViewWarnlist  bool `json:"viewWarnlist"`
	ManageUsers   bool `json:"manageUsers"`
}

// Allows: unbekannte Capabilities werden immer abgelehnt
func (p Permissions) Allows(c Capability) bool {
	switch c {
	case CapConsume:
		return p.Consume
	case CapPurchase:
		return p.Purchase
	case CapAddArticle:
		return p.AddArticle
	case CapRemoveArticle:
		return p.RemoveArticle
	case CapViewArticles:
		return p.ViewArticles
	case CapViewWarnlist:
		return p.ViewWarnlist
	case CapManageUsers:
		return p.ManageUsers
	default:
		return false
	}
}

// FullPermissions: alle Rechte (Seed-Admin)
func FullPermissions() Permissions {
	return Permissions{
		Consume:       true,
		Purchase:      true,
		AddArticle:    true,
		RemoveArticle: true,
		ViewArticles:  true,
		ViewWarnlist:  true,
		ManageUsers:   true,
	}
}
