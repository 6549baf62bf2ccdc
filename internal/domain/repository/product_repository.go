package repository

import (
	"context"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	Count(ctx context.Context) (int, error)
	ListByCategory(ctx context.Context, categoryID string, limit, offset int) ([]*entity.Product, error)
	CountByCategory(ctx context.Context, categoryID string) (int, error)
}

// StockRepository primitivas de mutación del contador de stock.
type StockRepository interface {
	// SetStock escribe el valor absoluto (modo lectura + escritura).
	SetStock(ctx context.Context, productID string, stock int) error
	// AdjustStock suma delta sólo si el resultado no queda negativo; devuelve el producto
	// actualizado o nil si la condición no se cumplió.
	AdjustStock(ctx context.Context, productID string, delta int) (*entity.Product, error)
}
