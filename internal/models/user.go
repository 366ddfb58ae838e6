package models

type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleStaff UserRole = "staff"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff:
		return true
	default:
		return false
	}
}

// User: Password enthält den bcrypt-Hash. Klartext aus alten Seed-Dateien wird beim Start gehasht.
type User struct {
	Username           string      `json:"username"`
	Password           string      `json:"password"`
	Role               UserRole    `json:"role"`
	MustChangePassword bool        `json:"mustChangePassword"`
	Permissions        Permissions `json:"permissions"`
}
