package admin

import (
	"context"
	"slices"
	"strings"

	"lager-backend/internal/access"
	"lager-backend/internal/apperr"
	"lager-backend/internal/auth"
	"lager-backend/internal/database"
	"lager-backend/internal/models"
)

// UserView: User ohne Passwort-Hash
type UserView struct {
	Username           string             `json:"username"`
	Role               models.UserRole    `json:"role"`
	MustChangePassword bool               `json:"mustChangePassword"`
	Permissions        models.Permissions `json:"permissions"`
}

func viewOf(u models.User) UserView {
	return UserView{
		Username:           u.Username,
		Role:               u.Role,
		MustChangePassword: u.MustChangePassword,
		Permissions:        u.Permissions,
	}
}

type NewUser struct {
	Username    string
	Password    string
	Role        models.UserRole
	Permissions models.Permissions
}

type UserPatch struct {
	Role        *models.UserRole
	Permissions *models.Permissions
}

// UserService: Benutzerverwaltung, alles hinter manageUsers
type UserService struct {
	store database.Store
}

func NewUserService(store database.Store) *UserService {
	return &UserService{store: store}
}

func (s *UserService) List(ctx context.Context, actor string) ([]UserView, error) {
	var out []UserView
	err := s.store.View(ctx, func(doc *models.Document) error {
		if err := access.AuthorizeIn(doc, actor, models.CapManageUsers); err != nil {
			return err
		}
		out = make([]UserView, 0, len(doc.Users))
		for _, u := range doc.Users {
			out = append(out, viewOf(u))
		}
		return nil
	})
	return out, err
}

// Create legt einen User an, der sein Startpasswort beim ersten Login ändern muss.
func (s *UserService) Create(ctx context.Context, actor string, in NewUser) (UserView, error) {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" {
		return UserView{}, apperr.InvalidArgument("username ist Pflicht")
	}
	if in.Role == "" {
		in.Role = models.RoleStaff
	}
	if !in.Role.Valid() {
		return UserView{}, apperr.InvalidArgument("unbekannte Rolle %q", in.Role)
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return UserView{}, err
	}

	var out UserView
	err = s.store.Update(ctx, func(doc *models.Document) error {
		if err := access.AuthorizeIn(doc, actor, models.CapManageUsers); err != nil {
			return err
		}
		if doc.FindUser(in.Username) >= 0 {
			return apperr.Conflict("User %q existiert bereits", in.Username)
		}
		u := models.User{
			Username:           in.Username,
			Password:           hash,
			Role:               in.Role,
			MustChangePassword: true,
			Permissions:        in.Permissions,
		}
		doc.Users = append(doc.Users, u)
		out = viewOf(u)
		return nil
	})
	return out, err
}

func (s *UserService) Update(ctx context.Context, actor, username string, p UserPatch) (UserView, error) {
	if p.Role != nil && !p.Role.Valid() {
		return UserView{}, apperr.InvalidArgument("unbekannte Rolle %q", *p.Role)
	}
	var out UserView
	err := s.store.Update(ctx, func(doc *models.Document) error {
		if err := access.AuthorizeIn(doc, actor, models.CapManageUsers); err != nil {
			return err
		}
		i := doc.FindUser(username)
		if i < 0 {
			return apperr.NotFound("User %q", username)
		}
		u := &doc.Users[i]
		if p.Role != nil {
			u.Role = *p.Role
		}
		if p.Permissions != nil {
			if username == actor && !p.Permissions.ManageUsers {
				return apperr.InvalidArgument("eigenes Recht manageUsers kann nicht entzogen werden")
			}
			u.Permissions = *p.Permissions
		}
		out = viewOf(*u)
		return nil
	})
	return out, err
}

func (s *UserService) Delete(ctx context.Context, actor, username string) (UserView, error) {
	var out UserView
	err := s.store.Update(ctx, func(doc *models.Document) error {
		if err := access.AuthorizeIn(doc, actor, models.CapManageUsers); err != nil {
			return err
		}
		if username == actor {
			return apperr.InvalidArgument("eigener User kann nicht gelöscht werden")
		}
		i := doc.FindUser(username)
		if i < 0 {
			return apperr.NotFound("User %q", username)
		}
		out = viewOf(doc.Users[i])
		doc.Users = slices.Delete(doc.Users, i, i+1)
		return nil
	})
	return out, err
}

// ResetPassword setzt ein neues Passwort und erzwingt die Änderung beim nächsten Login.
func (s *UserService) ResetPassword(ctx context.Context, actor, username, newPassword string) error {
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.store.Update(ctx, func(doc *models.Document) error {
		if err := access.AuthorizeIn(doc, actor, models.CapManageUsers); err != nil {
			return err
		}
		i := doc.FindUser(username)
		if i < 0 {
			return apperr.NotFound("User %q", username)
		}
		doc.Users[i].Password = hash
		doc.Users[i].MustChangePassword = true
		return nil
	})
}
