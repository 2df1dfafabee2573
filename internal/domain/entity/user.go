package entity

import "time"

// Roles válidos (tabla roles.name).
const (
	RoleAdmin   = "Admin"
	RoleManager = "Manager"
	RoleCashier = "Cashier"
)

// Estados de usuario.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User representa un usuario del sistema con su rol resuelto.
type User struct {
	ID           int64
	Email        string
	PasswordHash string // bcrypt hash, nunca plano
	FirstName    string
	LastName     string
	Role         string // Admin, Manager, Cashier
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor identidad autenticada que ejecuta una operación (viene del token).
type Actor struct {
	ID   int64
	Role string
}

// Actor devuelve la identidad del usuario para las políticas de acceso.
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

// ValidRole indica si role es uno de los roles conocidos.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleCashier:
		return true
	}
	return false
}
