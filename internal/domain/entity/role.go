package entity

import "time"

// Nombres de rol con semántica en el evaluador de permisos.
const (
	RoleAdministrator = "administrator"
	RoleReader        = "reader"
	RoleCustomer      = "customer"
)

// AdministratorRoleID rol administrator del seed de esquema.
const AdministratorRoleID int64 = 1

// DefaultRoleID rol asignado a usuarios creados sin role_id (customer en el seed).
const DefaultRoleID int64 = 3

// Role agrupa usuarios; su nombre determina los métodos HTTP permitidos.
type Role struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
