package orders

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/tienda-api/internal/application/cache"
	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

// OrderUseCase orquesta órdenes contra el catálogo y la identidad.
type OrderUseCase struct {
	orders   repository.OrderRepository
	catalog  CatalogClient
	identity IdentityClient
	cache    *cache.Cache
	log      zerolog.Logger
}

func NewOrderUseCase(orders repository.OrderRepository, catalog CatalogClient, identity IdentityClient, c *cache.Cache, log zerolog.Logger) *OrderUseCase {
	return &OrderUseCase{orders: orders, catalog: catalog, identity: identity, cache: c, log: log}
}

// ──────────────────────────────────────────────────────────────────────────────
// Creación
// ──────────────────────────────────────────────────────────────────────────────

// Create valida todas las líneas sin tocar stock, reserva línea por línea y persiste.
// Cualquier fallo después de la primera reserva libera lo reservado en orden inverso.
func (uc *OrderUseCase) Create(ctx context.Context, caller Caller, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	owner, err := uc.resolveOwner(ctx, caller, in.UserID)
	if err != nil {
		return nil, err
	}

	lines := make([]entity.OrderLine, 0, len(in.Products))
	for _, l := range in.Products {
		lines = append(lines, entity.OrderLine{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	if err := uc.checkLines(ctx, lines); err != nil {
		return nil, err
	}

	saga := &reservation{catalog: uc.catalog, log: uc.log.With().Int64("user_id", owner).Logger()}
	for _, line := range lines {
		if err := saga.reserve(ctx, line); err != nil {
			return nil, saga.fail(ctx, "reserve "+line.ProductID, err)
		}
	}

	status := in.Status
	if status == "" {
		status = entity.OrderPending
	}
	now := time.Now()
	order := &entity.Order{
		ID:              uuid.NewString(),
		Lines:           lines,
		DeliveryAddress: in.DeliveryAddress,
		Status:          status,
		UserID:          owner,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.orders.Create(ctx, order); err != nil {
		return nil, saga.fail(ctx, "persist", err)
	}

	out := toOrderResponse(order)
	uc.cache.Set(ctx, cache.OrderKey(order.ID, 0), out)
	_ = uc.cache.Invalidate(ctx, cache.Invalidation{Prefixes: []string{cache.OrdersPrefix}})
	uc.log.Info().Str("order_id", order.ID).Int64("user_id", owner).Int("lines", len(lines)).Msg("orden creada")
	return &out, nil
}

// resolveOwner sólo un administrador puede enviar user_id, aunque sea el propio; el destino debe existir.
func (uc *OrderUseCase) resolveOwner(ctx context.Context, caller Caller, target *int64) (int64, error) {
	if target == nil {
		return caller.UserID, nil
	}
	if !caller.IsAdmin() {
		return 0, domain.Forbidden("user_id can only be set by administrators")
	}
	if *target == caller.UserID {
		return caller.UserID, nil
	}
	if _, err := uc.identity.GetUser(ctx, *target); err != nil {
		if isUpstreamStatus(err, http.StatusNotFound) {
			return 0, domain.NotFound("User id %d not found", *target)
		}
		return 0, err
	}
	return *target, nil
}

// checkLines lectura previa: ninguna reserva sale si alguna línea no se puede servir.
func (uc *OrderUseCase) checkLines(ctx context.Context, lines []entity.OrderLine) error {
	for _, line := range lines {
		p, err := uc.catalog.GetProduct(ctx, line.ProductID)
		if err != nil {
			if isUpstreamStatus(err, http.StatusNotFound) {
				return domain.Validation("Product id %s does not exist", line.ProductID)
			}
			return err
		}
		if p.Stock < line.Quantity {
			return domain.InsufficientStock("Requested quantity of product id %s not available", line.ProductID)
		}
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Lecturas
// ──────────────────────────────────────────────────────────────────────────────

// List órdenes visibles para el llamante: todas para administrador y lector, las propias para el resto.
func (uc *OrderUseCase) List(ctx context.Context, caller Caller, p dto.Pagination) (*dto.Page[dto.OrderResponse], error) {
	scope := caller.scope()
	return cache.Fetch(ctx, uc.cache, cache.OrdersKey(scope, p.Descriptor()), func(ctx context.Context) (*dto.Page[dto.OrderResponse], error) {
		if scope == 0 {
			return uc.page(ctx, p, uc.orders.Count, func(ctx context.Context) ([]*entity.Order, error) {
				return uc.orders.List(ctx, p.Limit(), p.Offset())
			})
		}
		return uc.userPage(ctx, scope, p)
	})
}

// ListByUser órdenes de un usuario concreto; un cliente sólo puede pedir las suyas.
func (uc *OrderUseCase) ListByUser(ctx context.Context, caller Caller, userID int64, p dto.Pagination) (*dto.Page[dto.OrderResponse], error) {
	if caller.scope() != 0 && caller.UserID != userID {
		return nil, domain.Forbidden("not allowed to read orders of user id %d", userID)
	}
	return cache.Fetch(ctx, uc.cache, cache.OrdersKey(userID, p.Descriptor()), func(ctx context.Context) (*dto.Page[dto.OrderResponse], error) {
		return uc.userPage(ctx, userID, p)
	})
}

func (uc *OrderUseCase) userPage(ctx context.Context, userID int64, p dto.Pagination) (*dto.Page[dto.OrderResponse], error) {
	count := func(ctx context.Context) (int, error) { return uc.orders.CountByUser(ctx, userID) }
	return uc.page(ctx, p, count, func(ctx context.Context) ([]*entity.Order, error) {
		return uc.orders.ListByUser(ctx, userID, p.Limit(), p.Offset())
	})
}

func (uc *OrderUseCase) page(ctx context.Context, p dto.Pagination, count func(context.Context) (int, error), list func(context.Context) ([]*entity.Order, error)) (*dto.Page[dto.OrderResponse], error) {
	total, err := count(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := list(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		items = append(items, toOrderResponse(o))
	}
	return dto.NewPage(items, p, total, "orders")
}

func (uc *OrderUseCase) Get(ctx context.Context, caller Caller, id string) (*dto.OrderResponse, error) {
	if err := parseOrderID(id); err != nil {
		return nil, err
	}
	return cache.Fetch(ctx, uc.cache, cache.OrderKey(id, caller.scope()), func(ctx context.Context) (*dto.OrderResponse, error) {
		o, err := uc.load(ctx, caller.scope(), id)
		if err != nil {
			return nil, err
		}
		out := toOrderResponse(o)
		return &out, nil
	})
}

// Products snapshot vivo de cada producto de la orden; se cachea la página completa.
func (uc *OrderUseCase) Products(ctx context.Context, caller Caller, id string, p dto.Pagination) (*dto.Page[dto.OrderProductResponse], error) {
	if err := parseOrderID(id); err != nil {
		return nil, err
	}
	scope := caller.scope()
	return cache.Fetch(ctx, uc.cache, cache.OrderProductsKey(id, scope, p.Descriptor()), func(ctx context.Context) (*dto.Page[dto.OrderProductResponse], error) {
		o, err := uc.load(ctx, scope, id)
		if err != nil {
			return nil, err
		}
		if o.IsCancelled() {
			return nil, domain.Forbidden("Order id %s is cancelled", id)
		}
		lines := dto.SlicePage(o.Lines, p)
		items := make([]dto.OrderProductResponse, 0, len(lines))
		for _, line := range lines {
			prod, err := uc.catalog.GetProduct(ctx, line.ProductID)
			if err != nil {
				return nil, err
			}
			items = append(items, dto.OrderProductResponse{ProductResponse: *prod, Quantity: line.Quantity})
		}
		return dto.NewPage(items, p, len(o.Lines), "products")
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Mutaciones
// ──────────────────────────────────────────────────────────────────────────────

// Update cambia dirección o estado; sólo el dueño o un administrador, nunca sobre una orden cancelada.
func (uc *OrderUseCase) Update(ctx context.Context, caller Caller, id string, in dto.UpdateOrderRequest) error {
	if err := parseOrderID(id); err != nil {
		return err
	}
	if err := dto.Validate(in); err != nil {
		return err
	}
	o, err := uc.loadOwned(ctx, caller, id)
	if err != nil {
		return err
	}
	if o.IsCancelled() {
		return domain.Conflict("Order id %s is cancelled and cannot be modified", id)
	}
	if in.DeliveryAddress != nil {
		o.DeliveryAddress = *in.DeliveryAddress
	}
	if in.Status != nil {
		o.Status = *in.Status
	}
	o.UpdatedAt = time.Now()
	if err := uc.orders.Update(ctx, o); err != nil {
		return err
	}
	uc.invalidateOrder(ctx, id)
	return nil
}

// Cancel libera el stock de todas las líneas y deja la orden en cancelled.
func (uc *OrderUseCase) Cancel(ctx context.Context, caller Caller, id string) (*dto.OrderResponse, error) {
	if err := parseOrderID(id); err != nil {
		return nil, err
	}
	o, err := uc.loadOwned(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if err := uc.cancel(ctx, o); err != nil {
		return nil, err
	}
	out := toOrderResponse(o)
	return &out, nil
}

// cancel libera cada línea y marca la orden. Si una liberación falla, vuelve a reservar
// lo ya liberado para que la orden siga activa con su stock intacto.
func (uc *OrderUseCase) cancel(ctx context.Context, o *entity.Order) error {
	if o.IsCancelled() {
		return domain.Conflict("Order id %s is already cancelled", o.ID)
	}
	var released []entity.OrderLine
	undo := func(cause error) error {
		bg := context.WithoutCancel(ctx)
		for i := len(released) - 1; i >= 0; i-- {
			l := released[i]
			if err := uc.catalog.ReserveStock(bg, l.ProductID, l.Quantity); err != nil {
				uc.log.Error().Err(err).Str("order_id", o.ID).Str("product_id", l.ProductID).
					Msg("no se pudo restaurar la reserva tras cancelación fallida")
			}
		}
		return cause
	}

	for _, l := range o.Lines {
		if err := uc.catalog.ReleaseStock(ctx, l.ProductID, l.Quantity); err != nil {
			return undo(err)
		}
		released = append(released, l)
	}

	prev := o.Status
	o.Status = entity.OrderCancelled
	o.UpdatedAt = time.Now()
	if err := uc.orders.Update(ctx, o); err != nil {
		o.Status = prev
		return undo(err)
	}
	uc.invalidateOrder(ctx, o.ID)
	uc.log.Info().Str("order_id", o.ID).Int64("user_id", o.UserID).Msg("orden cancelada")
	return nil
}

func (uc *OrderUseCase) invalidateOrder(ctx context.Context, id string) {
	_ = uc.cache.Invalidate(ctx, cache.Invalidation{
		Keys:     []string{cache.OrderKey(id, 0)},
		Prefixes: []string{cache.OrderPrefix(id), cache.OrdersPrefix},
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Cascadas
// ──────────────────────────────────────────────────────────────────────────────

// CascadeUser cancela todas las órdenes activas de un usuario.
func (uc *OrderUseCase) CascadeUser(ctx context.Context, userID int64) (*dto.CascadeReport, error) {
	matched, err := uc.orders.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	report := uc.cascade(ctx, matched)
	uc.log.Info().Int64("user_id", userID).Int("cancelled", len(report.CancelledOrders)).
		Int("failures", len(report.Failures)).Msg("cascada de usuario")
	return report, nil
}

// CascadeProduct cancela completa cada orden activa que contiene el producto.
func (uc *OrderUseCase) CascadeProduct(ctx context.Context, productID string) (*dto.CascadeReport, error) {
	if _, err := uuid.Parse(productID); err != nil {
		return nil, domain.Validation("Product id %s is not valid", productID)
	}
	matched, err := uc.orders.ListActiveByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	report := uc.cascade(ctx, matched)
	uc.log.Info().Str("product_id", productID).Int("cancelled", len(report.CancelledOrders)).
		Int("failures", len(report.Failures)).Msg("cascada de producto")
	return report, nil
}

// cascade intenta todas las órdenes aunque alguna falle.
func (uc *OrderUseCase) cascade(ctx context.Context, matched []*entity.Order) *dto.CascadeReport {
	report := &dto.CascadeReport{CancelledOrders: []string{}, Failures: []dto.CascadeFailure{}}
	for _, o := range matched {
		if err := uc.cancel(ctx, o); err != nil {
			uc.log.Warn().Err(err).Str("order_id", o.ID).Msg("orden no cancelada en cascada")
			report.Failures = append(report.Failures, dto.CascadeFailure{OrderID: o.ID, Error: err.Error()})
			continue
		}
		report.CancelledOrders = append(report.CancelledOrders, o.ID)
	}
	return report
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

// load con alcance: fuera de su alcance una orden ajena se trata como inexistente.
func (uc *OrderUseCase) load(ctx context.Context, scope int64, id string) (*entity.Order, error) {
	o, err := uc.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil || (scope != 0 && o.UserID != scope) {
		return nil, domain.NotFound("Order id %s not found", id)
	}
	return o, nil
}

// loadOwned para mutaciones: el dueño o un administrador.
func (uc *OrderUseCase) loadOwned(ctx context.Context, caller Caller, id string) (*entity.Order, error) {
	o, err := uc.load(ctx, caller.scope(), id)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && o.UserID != caller.UserID {
		return nil, domain.Forbidden("only the owner or an administrator may modify order id %s", id)
	}
	return o, nil
}

func parseOrderID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Validation("Order id %s is not valid", id)
	}
	return nil
}

func isUpstreamStatus(err error, status int) bool {
	var ue *domain.UpstreamError
	return errors.As(err, &ue) && ue.Status == status
}

func toOrderResponse(o *entity.Order) dto.OrderResponse {
	lines := make([]dto.OrderLine, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, dto.OrderLine{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return dto.OrderResponse{
		ID:              o.ID,
		Products:        lines,
		DeliveryAddress: o.DeliveryAddress,
		Status:          o.Status,
		UserID:          o.UserID,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}
