package auth

import (
	"strings"
	"time"

	"lager-backend/internal/apperr"
	"lager-backend/internal/config"
	"lager-backend/internal/database"
	"lager-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

// SessionResponse entspricht dem, was der Web-Client nach Login und bei /me erwartet.
type SessionResponse struct {
	User               string             `json:"user"`
	Role               models.UserRole    `json:"role"`
	Permissions        models.Permissions `json:"permissions"`
	MustChangePassword bool               `json:"mustChangePassword"`
	Token              string             `json:"token,omitempty"`
}

func sessionResponse(u *models.User) SessionResponse {
	return SessionResponse{
		User:               u.Username,
		Role:               u.Role,
		Permissions:        u.Permissions,
		MustChangePassword: u.MustChangePassword,
	}
}

// POST /api/login
func LoginHandler(cfg *config.Config, store database.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Ungültiger Request-Body")
		}
		body.Username = strings.TrimSpace(body.Username)

		var user models.User
		found := false
		err := store.View(c.UserContext(), func(doc *models.Document) error {
			if i := doc.FindUser(body.Username); i >= 0 {
				user, found = doc.Users[i], true
			}
			return nil
		})
		if err != nil {
			return apperr.ToFiber(err)
		}
		if !found || !CheckPassword(user.Password, body.Password) {
			return fiber.NewError(fiber.StatusUnauthorized, "Login fehlgeschlagen")
		}

		token, err := GenerateToken(cfg.JWTSecret, cfg.SessionTTL, &user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Token konnte nicht erstellt werden")
		}

		c.Cookie(&fiber.Cookie{
			Name:     SessionCookie,
			Value:    token,
			Path:     "/",
			Expires:  time.Now().Add(cfg.SessionTTL),
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})

		res := sessionResponse(&user)
		res.Token = token
		return c.JSON(res)
	}
}

// POST /api/logout
func LogoutHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.ClearCookie(SessionCookie)
		return c.JSON(fiber.Map{"success": true})
	}
}

// GET /api/me
func MeHandler(store database.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		username, err := Identity(c)
		if err != nil {
			return err
		}

		var res SessionResponse
		found := false
		err = store.View(c.UserContext(), func(doc *models.Document) error {
			if i := doc.FindUser(username); i >= 0 {
				res, found = sessionResponse(&doc.Users[i]), true
			}
			return nil
		})
		if err != nil {
			return apperr.ToFiber(err)
		}
		if !found {
			return fiber.NewError(fiber.StatusUnauthorized, "Nicht eingeloggt")
		}
		return c.JSON(res)
	}
}

// POST /api/change-password
func ChangePasswordHandler(store database.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		username, err := Identity(c)
		if err != nil {
			return err
		}

		var body ChangePasswordRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Ungültiger Request-Body")
		}
		hash, err := HashPassword(body.NewPassword)
		if err != nil {
			return apperr.ToFiber(err)
		}

		err = store.Update(c.UserContext(), func(doc *models.Document) error {
			i := doc.FindUser(username)
			if i < 0 {
				return apperr.ErrUnauthenticated
			}
			doc.Users[i].Password = hash
			doc.Users[i].MustChangePassword = false
			return nil
		})
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(fiber.Map{"success": true})
	}
}
