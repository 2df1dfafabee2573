// Package access centraliza las reglas de rol y propiedad sobre ventas.
// Ningún caso de uso debe repetir listas de roles: todos consultan RolePolicy.
package access

import "github.com/jhoicas/pos-api/internal/domain/entity"

// RolePolicy política por defecto: Admin/Manager sin restricción; Cashier solo sobre
// ventas propias y nunca puede eliminar ítems.
type RolePolicy struct{}

// NewRolePolicy construye la política de roles.
func NewRolePolicy() RolePolicy { return RolePolicy{} }

// IsPrivileged true para Admin y Manager.
func IsPrivileged(actor entity.Actor) bool {
	return actor.Role == entity.RoleAdmin || actor.Role == entity.RoleManager
}

// CanAccessSale true si el actor es Admin/Manager o Cashier dueño de la venta.
func (RolePolicy) CanAccessSale(actor entity.Actor, sale *entity.Sale) bool {
	if IsPrivileged(actor) {
		return true
	}
	if sale == nil {
		return false
	}
	return actor.Role == entity.RoleCashier && sale.UserID == actor.ID
}

// CanDelete true solo para Admin y Manager.
func (RolePolicy) CanDelete(actor entity.Actor) bool {
	return IsPrivileged(actor)
}

// OwnerScope devuelve el dueño por el que deben filtrarse los listados del actor
// (nil = sin restricción).
func (RolePolicy) OwnerScope(actor entity.Actor) *int64 {
	if IsPrivileged(actor) {
		return nil
	}
	id := actor.ID
	return &id
}
