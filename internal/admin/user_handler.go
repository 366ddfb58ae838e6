package admin

import (
	"lager-backend/internal/apperr"
	"lager-backend/internal/audit"
	"lager-backend/internal/auth"
	"lager-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateUserRequest struct {
	Username    string             `json:"username"`
	Password    string             `json:"password"`
	Role        models.UserRole    `json:"role"`
	Permissions models.Permissions `json:"permissions"`
}

type UpdateUserRequest struct {
	Role        *models.UserRole    `json:"role"`
	Permissions *models.Permissions `json:"permissions"`
}

type ResetPasswordRequest struct {
	Username    string `json:"username"`
	NewPassword string `json:"newPassword"`
}

// GET /api/users
func ListUsersHandler(svc *UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.Identity(c)
		if err != nil {
			return err
		}
		users, err := svc.List(c.UserContext(), actor)
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(users)
	}
}

// POST /api/users
func CreateUserHandler(svc *UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.Identity(c)
		if err != nil {
			return err
		}

		var body CreateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Ungültige Daten")
		}

		u, err := svc.Create(c.UserContext(), actor, NewUser{
			Username:    body.Username,
			Password:    body.Password,
			Role:        body.Role,
			Permissions: body.Permissions,
		})
		if err != nil {
			return apperr.ToFiber(err)
		}

		audit.WriteLog(audit.LogOptions{
			User: actor, EntityType: "user", EntityID: u.Username,
			Action: "create", Description: "User angelegt", After: u,
		})
		return c.Status(fiber.StatusCreated).JSON(u)
	}
}

// PUT /api/users/:username
func UpdateUserHandler(svc *UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.Identity(c)
		if err != nil {
			return err
		}

		var body UpdateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Ungültige Daten")
		}

		u, err := svc.Update(c.UserContext(), actor, c.Params("username"), UserPatch{
			Role:        body.Role,
			Permissions: body.Permissions,
		})
		if err != nil {
			return apperr.ToFiber(err)
		}

		audit.WriteLog(audit.LogOptions{
			User: actor, EntityType: "user", EntityID: u.Username,
			Action: "update", Description: "Rolle/Rechte geändert", After: u,
		})
		return c.JSON(u)
	}
}

// DELETE /api/users/:username
func DeleteUserHandler(svc *UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.Identity(c)
		if err != nil {
			return err
		}

		u, err := svc.Delete(c.UserContext(), actor, c.Params("username"))
		if err != nil {
			return apperr.ToFiber(err)
		}

		audit.WriteLog(audit.LogOptions{
			User: actor, EntityType: "user", EntityID: u.Username,
			Action: "delete", Description: "User gelöscht", Before: u,
		})
		return c.JSON(fiber.Map{"success": true})
	}
}

// POST /api/admin/reset-password {username, newPassword}
func ResetPasswordHandler(svc *UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.Identity(c)
		if err != nil {
			return err
		}

		var body ResetPasswordRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Ungültige Daten")
		}

		if err := svc.ResetPassword(c.UserContext(), actor, body.Username, body.NewPassword); err != nil {
			return apperr.ToFiber(err)
		}

		audit.WriteLog(audit.LogOptions{
			User: actor, EntityType: "user", EntityID: body.Username,
			Action: "reset-password", Description: "Passwort zurückgesetzt",
		})
		return c.JSON(fiber.Map{"success": true})
	}
}
