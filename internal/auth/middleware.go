package auth

import (
	"strings"

	"lager-backend/internal/access"
	"lager-backend/internal/config"
	"lager-backend/internal/database"
	"lager-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	CtxUsernameKey = "username"
	CtxUserRoleKey = "user_role"

	// SessionCookie: httpOnly-Cookie des Web-Clients. API-Clients können
	// denselben Token als Bearer schicken.
	SessionCookie = "lager_session"
)

func JWTMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := c.Cookies(SessionCookie)
		if tokenStr == "" {
			authHeader := c.Get("Authorization")
			if authHeader == "" {
				return fiber.NewError(fiber.StatusUnauthorized, "Nicht eingeloggt")
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return fiber.NewError(fiber.StatusUnauthorized, "Authorization muss das Format 'Bearer <token>' haben")
			}
			tokenStr = parts[1]
		}

		claims, err := ParseToken(cfg.JWTSecret, tokenStr)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Session ungültig oder abgelaufen")
		}

		c.Locals(CtxUsernameKey, claims.Username)
		c.Locals(CtxUserRoleKey, claims.Role)

		return c.Next()
	}
}

// CurrentIdentity: Username aus der Session. Rechte werden immer aus dem
// User-Datensatz gelesen, nie aus dem Token.
func CurrentIdentity(c *fiber.Ctx) (string, bool) {
	username, ok := c.Locals(CtxUsernameKey).(string)
	return username, ok && username != ""
}

// Identity wie CurrentIdentity, aber mit 401 als Fehler.
func Identity(c *fiber.Ctx) (string, error) {
	username, ok := CurrentIdentity(c)
	if !ok {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Nicht eingeloggt")
	}
	return username, nil
}

// RequirePasswordChanged sperrt alle folgenden Routen, solange der User sein
// Passwort noch ändern muss. Login, Logout, Me und Change-Password werden
// vorher registriert und sind davon nicht betroffen.
func RequirePasswordChanged(store database.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		username, err := Identity(c)
		if err != nil {
			return err
		}

		mustChange := false
		err = store.View(c.UserContext(), func(doc *models.Document) error {
			if i := doc.FindUser(username); i >= 0 {
				mustChange = doc.Users[i].MustChangePassword
			}
			return nil
		})
		if err != nil {
			return err
		}
		if mustChange {
			return fiber.NewError(fiber.StatusForbidden, access.ErrPasswordChangeRequired.Error())
		}
		return c.Next()
	}
}
