package repository

import (
	"context"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
)

// OrderRepository define el puerto de persistencia para Order y sus líneas.
// Las búsquedas por usuario y por producto usan índices, no recorren todas las órdenes.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	Update(ctx context.Context, order *entity.Order) error
	List(ctx context.Context, limit, offset int) ([]*entity.Order, error)
	Count(ctx context.Context) (int, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*entity.Order, error)
	CountByUser(ctx context.Context, userID int64) (int, error)
	ListActiveByUser(ctx context.Context, userID int64) ([]*entity.Order, error)
	ListActiveByProduct(ctx context.Context, productID string) ([]*entity.Order, error)
}
