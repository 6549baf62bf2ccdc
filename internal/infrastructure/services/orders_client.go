package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/tienda-api/internal/application/catalog"
	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/application/identity"
)

var (
	_ identity.OrderCascader = (*OrdersClient)(nil)
	_ catalog.OrderCascader  = (*OrdersClient)(nil)
)

// OrdersClient dispara las cascadas de borrado en el servicio de órdenes.
// Se construye con CascadeTimeout, no con el timeout de una llamada unitaria.
type OrdersClient struct{ c client }

func NewOrdersClient(baseURL string, timeout time.Duration, log zerolog.Logger) *OrdersClient {
	return &OrdersClient{c: newClient("orders", baseURL, timeout, log)}
}

func (o *OrdersClient) CascadeUser(ctx context.Context, userID int64) (*dto.CascadeReport, error) {
	return o.cascade(ctx, fmt.Sprintf("/orders/cascade/users/%d", userID))
}

func (o *OrdersClient) CascadeProduct(ctx context.Context, productID string) (*dto.CascadeReport, error) {
	return o.cascade(ctx, "/orders/cascade/products/"+url.PathEscape(productID))
}

func (o *OrdersClient) cascade(ctx context.Context, path string) (*dto.CascadeReport, error) {
	var out dto.CascadeReport
	if err := o.c.do(ctx, http.MethodPost, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
