package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/tienda-api/internal/application/cache"
	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

// ProductUseCase lecturas cacheadas y escrituras de productos.
type ProductUseCase struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	orders     OrderCascader
	cache      *cache.Cache
	log        zerolog.Logger
}

func NewProductUseCase(products repository.ProductRepository, categories repository.CategoryRepository, orders OrderCascader, c *cache.Cache, log zerolog.Logger) *ProductUseCase {
	return &ProductUseCase{products: products, categories: categories, orders: orders, cache: c, log: log}
}

func (uc *ProductUseCase) List(ctx context.Context, p dto.Pagination) (*dto.Page[dto.ProductResponse], error) {
	return cache.Fetch(ctx, uc.cache, cache.ProductsKey(p.Descriptor()), func(ctx context.Context) (*dto.Page[dto.ProductResponse], error) {
		total, err := uc.products.Count(ctx)
		if err != nil {
			return nil, err
		}
		list, err := uc.products.List(ctx, p.Limit(), p.Offset())
		if err != nil {
			return nil, err
		}
		return dto.NewPage(toProductResponses(list), p, total, "products")
	})
}

// ListByCategory productos de una categoría existente.
func (uc *ProductUseCase) ListByCategory(ctx context.Context, categoryID string, p dto.Pagination) (*dto.Page[dto.ProductResponse], error) {
	if err := uc.requireCategory(ctx, categoryID); err != nil {
		return nil, err
	}
	return cache.Fetch(ctx, uc.cache, cache.CategoryProductsKey(categoryID, p.Descriptor()), func(ctx context.Context) (*dto.Page[dto.ProductResponse], error) {
		total, err := uc.products.CountByCategory(ctx, categoryID)
		if err != nil {
			return nil, err
		}
		list, err := uc.products.ListByCategory(ctx, categoryID, p.Limit(), p.Offset())
		if err != nil {
			return nil, err
		}
		return dto.NewPage(toProductResponses(list), p, total, "products")
	})
}

// Get snapshot del producto; lo consulta el servicio de órdenes antes de reservar.
func (uc *ProductUseCase) Get(ctx context.Context, id string) (*dto.ProductResponse, error) {
	if err := parseID("Product", id); err != nil {
		return nil, err
	}
	return cache.Fetch(ctx, uc.cache, cache.ProductKey(id), func(ctx context.Context) (*dto.ProductResponse, error) {
		p, err := uc.products.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, domain.NotFound("Product id %s not found", id)
		}
		out := toProductResponse(p)
		return &out, nil
	})
}

func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	if in.Price.IsNegative() {
		return nil, domain.Validation("price must not be negative")
	}
	if in.CategoryID != nil {
		if err := uc.requireCategory(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
	}
	now := time.Now()
	p := &entity.Product{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		CategoryID:  in.CategoryID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.products.Create(ctx, p); err != nil {
		return nil, mapProductErr(err, p.Name)
	}
	_ = uc.cache.Invalidate(ctx, cache.Invalidation{Prefixes: []string{cache.ProductsPrefix}})
	out := toProductResponse(p)
	return &out, nil
}

// Update cambia campos descriptivos; el stock sólo cambia vía StockUseCase.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if err := parseID("Product", id); err != nil {
		return nil, err
	}
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	p, err := uc.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFound("Product id %s not found", id)
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, domain.Validation("price must not be negative")
		}
		p.Price = *in.Price
	}
	if in.CategoryID != nil {
		if err := uc.requireCategory(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
		p.CategoryID = in.CategoryID
	}
	p.UpdatedAt = time.Now()
	if err := uc.products.Update(ctx, p); err != nil {
		return nil, mapProductErr(err, p.Name)
	}
	_ = uc.cache.Invalidate(ctx, cache.Invalidation{
		Keys:     []string{cache.ProductKey(id)},
		Prefixes: []string{cache.ProductsPrefix},
	})
	out := toProductResponse(p)
	return &out, nil
}

// Delete ejecuta primero la cascada en el servicio de órdenes (que devuelve stock a este producto
// y a las demás líneas) y después elimina el producto. Si la cascada no se puede ejecutar, no se borra.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) (*dto.DeleteProductResponse, error) {
	if err := parseID("Product", id); err != nil {
		return nil, err
	}
	p, err := uc.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFound("Product id %s not found", id)
	}

	report, err := uc.orders.CascadeProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(report.Failures) > 0 {
		uc.log.Warn().Str("product_id", id).Int("failures", len(report.Failures)).
			Msg("cascada de producto con órdenes sin cancelar")
	}

	if err := uc.products.Delete(ctx, id); err != nil {
		return nil, err
	}
	_ = uc.cache.Invalidate(ctx, cache.Invalidation{
		Keys:     []string{cache.ProductKey(id)},
		Prefixes: []string{cache.ProductsPrefix},
	})
	return &dto.DeleteProductResponse{Product: toProductResponse(p), Cascade: report}, nil
}

func (uc *ProductUseCase) requireCategory(ctx context.Context, id string) error {
	if err := parseID("Category", id); err != nil {
		return err
	}
	c, err := uc.categories.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return domain.NotFound("Category id %s not found", id)
	}
	return nil
}

func mapProductErr(err error, name string) error {
	if errors.Is(err, domain.ErrDuplicate) {
		return domain.Conflict("Product %s already exists", name)
	}
	return err
}

func toProductResponse(p *entity.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		CategoryID:  p.CategoryID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toProductResponses(list []*entity.Product) []dto.ProductResponse {
	out := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toProductResponse(p))
	}
	return out
}
