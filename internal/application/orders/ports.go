package orders

import (
	"context"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
)

// CatalogClient acceso al servicio de catálogo.
type CatalogClient interface {
	GetProduct(ctx context.Context, productID string) (*dto.ProductResponse, error)
	ReserveStock(ctx context.Context, productID string, quantity int) error
	ReleaseStock(ctx context.Context, productID string, quantity int) error
}

// IdentityClient acceso al servicio de identidad.
type IdentityClient interface {
	GetUser(ctx context.Context, userID int64) (*dto.UserResponse, error)
}

// Caller identidad ya verificada de quien hace la petición.
type Caller struct {
	UserID int64
	Role   string
}

func (c Caller) IsAdmin() bool { return c.Role == entity.RoleAdministrator }

// scope 0 si el llamante ve todas las órdenes, si no su propio id.
func (c Caller) scope() int64 {
	if c.Role == entity.RoleAdministrator || c.Role == entity.RoleReader {
		return 0
	}
	return c.UserID
}
