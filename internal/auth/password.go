package auth

import (
	"context"
	"log"

	"lager-backend/internal/apperr"
	"lager-backend/internal/database"
	"lager-backend/internal/models"

	"golang.org/x/crypto/bcrypt"
)

func HashPassword(password string) (string, error) {
	if password == "" {
		return "", apperr.InvalidArgument("Passwort darf nicht leer sein")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func isHashed(s string) bool {
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}

// HashLegacyPasswords ersetzt Klartext-Passwörter (alte db.json, Seed) durch
// bcrypt-Hashes. Gibt die Anzahl der umgestellten User zurück.
func HashLegacyPasswords(ctx context.Context, store database.Store) (int, error) {
	n := 0
	err := store.Update(ctx, func(doc *models.Document) error {
		for i := range doc.Users {
			u := &doc.Users[i]
			if isHashed(u.Password) {
				continue
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			u.Password = string(hash)
			n++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Printf("%d Klartext-Passwörter gehasht", n)
	}
	return n, nil
}
