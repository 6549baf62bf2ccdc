package catalog

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/tienda-api/internal/application/cache"
	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/inventory"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
	"github.com/jhoicas/tienda-api/pkg/config"
)

// StockUseCase reserva y libera unidades de un producto.
//
// En modo unguarded lee el stock y escribe el valor calculado sin bloqueo ni comparación:
// dos reservas concurrentes sobre el mismo producto pueden intercalarse y sobrevender.
// En modo guarded la suma se hace en un único UPDATE condicionado a stock >= 0.
type StockUseCase struct {
	products repository.ProductRepository
	stock    repository.StockRepository
	mode     string
	cache    *cache.Cache
	log      zerolog.Logger
}

func NewStockUseCase(products repository.ProductRepository, stock repository.StockRepository, mode string, c *cache.Cache, log zerolog.Logger) *StockUseCase {
	if mode == "" {
		mode = config.StockModeUnguarded
	}
	return &StockUseCase{products: products, stock: stock, mode: mode, cache: c, log: log}
}

// Reserve descuenta quantity del stock.
func (uc *StockUseCase) Reserve(ctx context.Context, productID string, quantity int) (*dto.ProductResponse, error) {
	return uc.mutate(ctx, productID, quantity, false)
}

// Release devuelve quantity al stock.
func (uc *StockUseCase) Release(ctx context.Context, productID string, quantity int) (*dto.ProductResponse, error) {
	return uc.mutate(ctx, productID, quantity, true)
}

func (uc *StockUseCase) mutate(ctx context.Context, productID string, quantity int, release bool) (*dto.ProductResponse, error) {
	if err := parseID("Product", productID); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, domain.Validation("quantity must be an integer greater than 0")
	}

	var (
		out *dto.ProductResponse
		err error
	)
	if uc.mode == config.StockModeGuarded {
		out, err = uc.adjust(ctx, productID, quantity, release)
	} else {
		out, err = uc.readModifyWrite(ctx, productID, quantity, release)
	}
	if err != nil {
		return nil, err
	}

	uc.log.Debug().Str("product_id", productID).Int("quantity", quantity).Bool("release", release).
		Int("stock", out.Stock).Msg("stock actualizado")
	_ = uc.cache.Invalidate(ctx, cache.Invalidation{
		Keys:     []string{cache.ProductKey(productID)},
		Prefixes: []string{cache.ProductsPrefix},
	})
	return out, nil
}

func (uc *StockUseCase) readModifyWrite(ctx context.Context, productID string, quantity int, release bool) (*dto.ProductResponse, error) {
	p, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFound("Product id %s not found", productID)
	}
	next, err := inventory.Apply(p.Stock, quantity, release, productID)
	if err != nil {
		return nil, err
	}
	if err := uc.stock.SetStock(ctx, productID, next); err != nil {
		return nil, err
	}
	p.Stock = next
	out := toProductResponse(p)
	return &out, nil
}

func (uc *StockUseCase) adjust(ctx context.Context, productID string, quantity int, release bool) (*dto.ProductResponse, error) {
	p, err := uc.stock.AdjustStock(ctx, productID, inventory.Delta(quantity, release))
	if err != nil {
		return nil, err
	}
	if p != nil {
		out := toProductResponse(p)
		return &out, nil
	}
	existing, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.NotFound("Product id %s not found", productID)
	}
	return nil, domain.InsufficientStock("Requested quantity of product id %s not available", productID)
}
