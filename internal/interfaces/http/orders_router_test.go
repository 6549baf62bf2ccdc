package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-api/internal/application/cache"
	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/application/orders"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
	"github.com/jhoicas/tienda-api/internal/infrastructure/services"
	apphttp "github.com/jhoicas/tienda-api/internal/interfaces/http"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

const (
	cafe = "6f1c2a9e-1d2b-4c3d-8e4f-0a1b2c3d4e01"
	pan  = "6f1c2a9e-1d2b-4c3d-8e4f-0a1b2c3d4e02"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles del servicio de órdenes
// ──────────────────────────────────────────────────────────────────────────────

// tokenVerifier resuelve la identidad según el token, como lo haría identidad.
type tokenVerifier map[string]dto.CredentialsResponse

func (v tokenVerifier) VerifyCredentials(ctx context.Context, _, _ string) (*dto.CredentialsResponse, error) {
	if creds, ok := v[services.BearerFrom(ctx)]; ok {
		return &creds, nil
	}
	return nil, &domain.UpstreamError{Service: "identity", Status: http.StatusUnauthorized, Body: []byte(`{"code":"INVALID_TOKEN","message":"Invalid access token"}`)}
}

type stockCatalog struct {
	mu    sync.Mutex
	stock map[string]int
}

func (s *stockCatalog) GetProduct(_ context.Context, id string) (*dto.ProductResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.stock[id]
	if !ok {
		return nil, &domain.UpstreamError{Service: "catalog", Status: http.StatusNotFound}
	}
	return &dto.ProductResponse{ID: id, Name: "p-" + id[len(id)-2:], Price: decimal.NewFromInt(3), Stock: n}, nil
}

func (s *stockCatalog) ReserveStock(_ context.Context, id string, q int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stock[id] < q {
		return &domain.UpstreamError{Service: "catalog", Status: http.StatusBadRequest}
	}
	s.stock[id] -= q
	return nil
}

func (s *stockCatalog) ReleaseStock(_ context.Context, id string, q int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stock[id] += q
	return nil
}

func (s *stockCatalog) of(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stock[id]
}

type nobody struct{}

func (nobody) GetUser(context.Context, int64) (*dto.UserResponse, error) {
	return nil, &domain.UpstreamError{Service: "identity", Status: http.StatusNotFound}
}

type orderStore struct {
	mu     sync.Mutex
	orders map[string]entity.Order
}

var _ repository.OrderRepository = (*orderStore)(nil)

func (s *orderStore) Create(_ context.Context, o *entity.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = *o
	return nil
}

func (s *orderStore) GetByID(_ context.Context, id string) (*entity.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.orders[id]; ok {
		return &o, nil
	}
	return nil, nil
}

func (s *orderStore) Update(ctx context.Context, o *entity.Order) error {
	return s.Create(ctx, o)
}

func (s *orderStore) filter(keep func(entity.Order) bool) []*entity.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.Order
	for _, o := range s.orders {
		if keep(o) {
			cp := o
			out = append(out, &cp)
		}
	}
	return out
}

func (s *orderStore) List(context.Context, int, int) ([]*entity.Order, error) {
	return s.filter(func(entity.Order) bool { return true }), nil
}

func (s *orderStore) Count(ctx context.Context) (int, error) {
	l, _ := s.List(ctx, 0, 0)
	return len(l), nil
}

func (s *orderStore) ListByUser(_ context.Context, userID int64, _, _ int) ([]*entity.Order, error) {
	return s.filter(func(o entity.Order) bool { return o.UserID == userID }), nil
}

func (s *orderStore) CountByUser(ctx context.Context, userID int64) (int, error) {
	l, _ := s.ListByUser(ctx, userID, 0, 0)
	return len(l), nil
}

func (s *orderStore) ListActiveByUser(_ context.Context, userID int64) ([]*entity.Order, error) {
	return s.filter(func(o entity.Order) bool { return o.UserID == userID && !o.IsCancelled() }), nil
}

func (s *orderStore) ListActiveByProduct(_ context.Context, productID string) ([]*entity.Order, error) {
	return s.filter(func(o entity.Order) bool {
		for _, l := range o.Lines {
			if l.ProductID == productID {
				return !o.IsCancelled()
			}
		}
		return false
	}), nil
}

type ordersApp struct {
	app     *fiber.App
	catalog *stockCatalog
	orders  *orderStore
}

func buildOrdersApp(t *testing.T) *ordersApp {
	t.Helper()
	catalog := &stockCatalog{stock: map[string]int{cafe: 5, pan: 2}}
	store := &orderStore{orders: map[string]entity.Order{}}
	c := cache.New(cache.NewMemoryStore(), cache.Options{TTL: time.Minute}, zerolog.Nop())
	uc := orders.NewOrderUseCase(store, catalog, nobody{}, c, zerolog.Nop())

	app := apphttp.NewApp("orders-test", logger.Nop())
	apphttp.OrdersRouter(app, apphttp.OrdersDeps{
		OrderUC: uc,
		Verifier: tokenVerifier{
			"admin": {UserID: 1, Role: entity.RoleAdministrator},
			"ana":   {UserID: 7, Role: entity.RoleCustomer},
			"beto":  {UserID: 8, Role: entity.RoleCustomer},
		},
	})
	return &ordersApp{app: app, catalog: catalog, orders: store}
}

func (a *ordersApp) create(t *testing.T, token, body string) (int, dto.OrderResponse) {
	t.Helper()
	resp, raw := do(t, a.app, http.MethodPost, "/orders", "Bearer "+token, body)
	var out dto.OrderResponse
	if resp.StatusCode == http.StatusCreated {
		require.NoError(t, json.Unmarshal([]byte(raw), &out))
	}
	return resp.StatusCode, out
}

// ──────────────────────────────────────────────────────────────────────────────
// Flujo de órdenes por HTTP
// ──────────────────────────────────────────────────────────────────────────────

func TestOrders_CrearReservaStockYAsignaDueno(t *testing.T) {
	a := buildOrdersApp(t)

	status, o := a.create(t, "ana", `{"products":[{"_id":"`+cafe+`","quantity":2},{"_id":"`+pan+`","quantity":1}],"delivery_address":"Calle 1"}`)

	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, int64(7), o.UserID)
	assert.Equal(t, entity.OrderPending, o.Status)
	assert.Equal(t, 3, a.catalog.of(cafe))
	assert.Equal(t, 1, a.catalog.of(pan))
}

func TestOrders_StockInsuficiente400SinTocarStock(t *testing.T) {
	a := buildOrdersApp(t)

	resp, body := do(t, a.app, http.MethodPost, "/orders", "Bearer ana",
		`{"products":[{"_id":"`+cafe+`","quantity":1},{"_id":"`+pan+`","quantity":3}],"delivery_address":"Calle 1"}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Requested quantity of product id "+pan+" not available")
	assert.Equal(t, 5, a.catalog.of(cafe))
	assert.Equal(t, 2, a.catalog.of(pan))
}

func TestOrders_ProductoDuplicadoEnLineas400(t *testing.T) {
	a := buildOrdersApp(t)
	status, _ := a.create(t, "ana", `{"products":[{"_id":"`+cafe+`","quantity":1},{"_id":"`+cafe+`","quantity":1}],"delivery_address":"Calle 1"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, 5, a.catalog.of(cafe))
}

func TestOrders_OrdenAjenaNoSeVe(t *testing.T) {
	a := buildOrdersApp(t)
	_, o := a.create(t, "ana", `{"products":[{"_id":"`+cafe+`","quantity":1}],"delivery_address":"Calle 1"}`)

	resp, _ := do(t, a.app, http.MethodGet, "/orders/"+o.ID, "Bearer beto", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, a.app, http.MethodGet, "/orders/"+o.ID, "Bearer admin", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestOrders_CancelarDevuelveStockUnaSolaVez(t *testing.T) {
	a := buildOrdersApp(t)
	_, o := a.create(t, "ana", `{"products":[{"_id":"`+cafe+`","quantity":4}],"delivery_address":"Calle 1"}`)
	require.Equal(t, 1, a.catalog.of(cafe))

	resp, body := do(t, a.app, http.MethodPut, "/orders/"+o.ID+"/cancel", "Bearer ana", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Contains(t, body, `"status":"cancelled"`)
	assert.Equal(t, 5, a.catalog.of(cafe))

	resp, _ = do(t, a.app, http.MethodPut, "/orders/"+o.ID+"/cancel", "Bearer ana", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, 5, a.catalog.of(cafe))

	resp, _ = do(t, a.app, http.MethodGet, "/orders/"+o.ID+"/products", "Bearer ana", "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestOrders_ActualizarSoloDireccionYEstado(t *testing.T) {
	a := buildOrdersApp(t)
	_, o := a.create(t, "ana", `{"products":[{"_id":"`+cafe+`","quantity":1}],"delivery_address":"Calle 1"}`)

	resp, _ := do(t, a.app, http.MethodPut, "/orders/"+o.ID+"/update", "Bearer ana", `{"status":"processing","delivery_address":"Calle 2"}`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, body := do(t, a.app, http.MethodGet, "/orders/"+o.ID, "Bearer ana", "")
	assert.Contains(t, body, `"delivery_address":"Calle 2"`)
	assert.Contains(t, body, `"status":"processing"`)

	resp, _ = do(t, a.app, http.MethodPut, "/orders/"+o.ID+"/update", "Bearer ana", `{"status":"cancelled"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "cancelar sólo por /cancel")
}

func TestOrders_CascadaDeProductoSoloAdmin(t *testing.T) {
	a := buildOrdersApp(t)
	_, o := a.create(t, "ana", `{"products":[{"_id":"`+pan+`","quantity":2}],"delivery_address":"Calle 1"}`)

	resp, _ := do(t, a.app, http.MethodPost, "/orders/cascade/products/"+pan, "Bearer ana", "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := do(t, a.app, http.MethodPost, "/orders/cascade/products/"+pan, "Bearer admin", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Contains(t, body, o.ID)
	assert.Equal(t, 2, a.catalog.of(pan))
}

func TestOrders_CascadaDeUsuarioPropia(t *testing.T) {
	a := buildOrdersApp(t)
	_, _ = a.create(t, "ana", `{"products":[{"_id":"`+cafe+`","quantity":2}],"delivery_address":"Calle 1"}`)

	resp, _ := do(t, a.app, http.MethodPost, "/orders/cascade/users/7", "Bearer beto", "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = do(t, a.app, http.MethodPost, "/orders/cascade/users/7", "Bearer ana", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 5, a.catalog.of(cafe))
}

func TestOrders_TokenRechazadoPorIdentidad(t *testing.T) {
	a := buildOrdersApp(t)
	resp, body := do(t, a.app, http.MethodGet, "/orders", "Bearer desconocido", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "INVALID_TOKEN")
}
