package entity

import "time"

// User representa un usuario del servicio de identidad.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano después de persistir
	RoleID       *int64 // nil si su rol fue eliminado
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
