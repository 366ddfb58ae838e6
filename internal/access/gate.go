// Package access entscheidet, ob eine Identität eine Capability ausüben darf.
package access

import (
	"errors"
	"fmt"

	"lager-backend/internal/apperr"
	"lager-backend/internal/models"
)

// ErrPasswordChangeRequired: Passwort muss zuerst geändert werden
var ErrPasswordChangeRequired = errors.New("Passwort muss geändert werden")

// ForbiddenError trägt die fehlende Capability.
type ForbiddenError struct {
	Capability     models.Capability
	PasswordChange bool
}

func (e *ForbiddenError) Error() string {
	if e.PasswordChange {
		return ErrPasswordChangeRequired.Error()
	}
	return fmt.Sprintf("Keine Berechtigung: %s", e.Capability)
}

func (e *ForbiddenError) Is(target error) bool {
	if target == apperr.ErrForbidden {
		return true
	}
	return e.PasswordChange && target == ErrPasswordChangeRequired
}

// Authorize prüft genau eine Capability. Ein gesetztes mustChangePassword
// sperrt alles, unabhängig von den Rechten. Ein unbekannter User (nil) hat keine Rechte.
func Authorize(user *models.User, c models.Capability) error {
	if user != nil && user.MustChangePassword {
		return &ForbiddenError{Capability: c, PasswordChange: true}
	}
	if user == nil || !user.Permissions.Allows(c) {
		return &ForbiddenError{Capability: c}
	}
	return nil
}

// AuthorizeIn löst den User im Dokument auf und prüft dann die Capability.
// Wird innerhalb der Store-Transaktion aufgerufen, damit Prüfung und Mutation
// denselben Stand sehen.
func AuthorizeIn(doc *models.Document, username string, c models.Capability) error {
	i := doc.FindUser(username)
	if i < 0 {
		return Authorize(nil, c)
	}
	return Authorize(&doc.Users[i], c)
}
