package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/application/orders"
)

var _ orders.CatalogClient = (*CatalogClient)(nil)

// ordersPath ruta original que se declara en los cambios de stock; habilita PUT a clientes.
const ordersPath = "/orders"

// CatalogClient cliente del servicio de catálogo.
type CatalogClient struct{ c client }

func NewCatalogClient(baseURL string, timeout time.Duration, log zerolog.Logger) *CatalogClient {
	return &CatalogClient{c: newClient("catalog", baseURL, timeout, log)}
}

func (cc *CatalogClient) GetProduct(ctx context.Context, productID string) (*dto.ProductResponse, error) {
	var out dto.ProductResponse
	if err := cc.c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(productID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (cc *CatalogClient) ReserveStock(ctx context.Context, productID string, quantity int) error {
	return cc.updateStock(ctx, productID, quantity, false)
}

func (cc *CatalogClient) ReleaseStock(ctx context.Context, productID string, quantity int) error {
	return cc.updateStock(ctx, productID, quantity, true)
}

func (cc *CatalogClient) updateStock(ctx context.Context, productID string, quantity int, release bool) error {
	path := fmt.Sprintf("/products/%s?quantity=%d", url.PathEscape(productID), quantity)
	in := dto.StockUpdateRequest{OriginalPath: ordersPath, PreviousStock: release}
	return cc.c.do(ctx, http.MethodPut, path, in, nil)
}
