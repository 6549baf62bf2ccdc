package repository

import (
	"context"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
)

// RoleRepository define el puerto de persistencia para Role.
// Delete deja role_id en NULL para los usuarios del rol.
type RoleRepository interface {
	Create(ctx context.Context, role *entity.Role) error
	GetByID(ctx context.Context, id int64) (*entity.Role, error)
	Update(ctx context.Context, role *entity.Role) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*entity.Role, error)
}
