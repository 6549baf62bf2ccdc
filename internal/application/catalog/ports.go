package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/domain"
)

// OrderCascader pide al servicio de órdenes cancelar las órdenes que contienen un producto.
type OrderCascader interface {
	CascadeProduct(ctx context.Context, productID string) (*dto.CascadeReport, error)
}

func parseID(kind, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Validation("%s id %s is not valid", kind, id)
	}
	return nil
}
