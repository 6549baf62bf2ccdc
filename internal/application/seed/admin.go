// Package seed puebla una base recién creada: administrador inicial y fixtures de catálogo.
// Las altas pasan por los casos de uso: misma validación e invalidación de caché que la API.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
)

// UserCreator alta validada de usuarios (identity.UserUseCase).
type UserCreator interface {
	Create(ctx context.Context, in dto.CreateUserRequest) (*dto.UserResponse, error)
}

// Admin datos del administrador inicial.
type Admin struct {
	Name     string
	Email    string
	Password string
}

// AdminSeeder crea el primer administrador.
type AdminSeeder struct {
	users UserCreator
	log   zerolog.Logger
}

func NewAdminSeeder(users UserCreator, log zerolog.Logger) *AdminSeeder {
	return &AdminSeeder{users: users, log: log}
}

// EnsureAdmin crea el administrador con rol administrator. Si el email o el nombre ya están
// registrados no hace nada y devuelve false; correr el seed dos veces es seguro.
func (s *AdminSeeder) EnsureAdmin(ctx context.Context, a Admin) (bool, error) {
	roleID := entity.AdministratorRoleID
	u, err := s.users.Create(ctx, dto.CreateUserRequest{Name: a.Name, Email: a.Email, Password: a.Password, RoleID: &roleID})
	if errors.Is(err, domain.ErrConflict) {
		s.log.Info().Str("email", a.Email).Msg("administrador ya registrado, se omite")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("crear administrador: %w", err)
	}
	s.log.Info().Int64("user_id", u.ID).Str("email", u.Email).Msg("administrador creado")
	return true, nil
}
