package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/tienda-api/internal/application/cache"
	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

// CategoryUseCase CRUD de categorías.
type CategoryUseCase struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
	cache      *cache.Cache
}

func NewCategoryUseCase(categories repository.CategoryRepository, products repository.ProductRepository, c *cache.Cache) *CategoryUseCase {
	return &CategoryUseCase{categories: categories, products: products, cache: c}
}

func (uc *CategoryUseCase) List(ctx context.Context) ([]dto.CategoryResponse, error) {
	list, err := cache.Fetch(ctx, uc.cache, cache.CategoriesKey, func(ctx context.Context) ([]dto.CategoryResponse, error) {
		cats, err := uc.categories.List(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]dto.CategoryResponse, 0, len(cats))
		for _, c := range cats {
			out = append(out, toCategoryResponse(c))
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, domain.NotFound("No categories found")
	}
	return list, nil
}

func (uc *CategoryUseCase) Get(ctx context.Context, id string) (*dto.CategoryResponse, error) {
	if err := parseID("Category", id); err != nil {
		return nil, err
	}
	return cache.Fetch(ctx, uc.cache, cache.CategoryKey(id), func(ctx context.Context) (*dto.CategoryResponse, error) {
		c, err := uc.categories.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, domain.NotFound("Category id %s not found", id)
		}
		out := toCategoryResponse(c)
		return &out, nil
	})
}

func (uc *CategoryUseCase) Create(ctx context.Context, in dto.CategoryRequest) (*dto.CategoryResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	if in.Name == nil {
		return nil, domain.Validation("name is required")
	}
	now := time.Now()
	c := &entity.Category{ID: uuid.NewString(), Name: *in.Name, CreatedAt: now, UpdatedAt: now}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if err := uc.categories.Create(ctx, c); err != nil {
		return nil, mapCategoryErr(err, c.Name)
	}
	_ = uc.cache.Invalidate(ctx, cache.Invalidation{Keys: []string{cache.CategoriesKey}})
	out := toCategoryResponse(c)
	return &out, nil
}

func (uc *CategoryUseCase) Update(ctx context.Context, id string, in dto.CategoryRequest) (*dto.CategoryResponse, error) {
	if err := parseID("Category", id); err != nil {
		return nil, err
	}
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	c, err := uc.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.NotFound("Category id %s not found", id)
	}
	if in.Name != nil {
		c.Name = *in.Name
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	c.UpdatedAt = time.Now()
	if err := uc.categories.Update(ctx, c); err != nil {
		return nil, mapCategoryErr(err, c.Name)
	}
	_ = uc.cache.Invalidate(ctx, cache.Invalidation{Keys: []string{cache.CategoryKey(id), cache.CategoriesKey}})
	out := toCategoryResponse(c)
	return &out, nil
}

// Delete elimina la categoría; sus productos quedan sin categoría y se invalidan.
func (uc *CategoryUseCase) Delete(ctx context.Context, id string) (*dto.CategoryResponse, error) {
	if err := parseID("Category", id); err != nil {
		return nil, err
	}
	c, err := uc.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.NotFound("Category id %s not found", id)
	}
	affected, err := uc.products.ListByCategory(ctx, id, 0, 0)
	if err != nil {
		return nil, err
	}
	if err := uc.categories.Delete(ctx, id); err != nil {
		return nil, err
	}

	keys := []string{cache.CategoryKey(id), cache.CategoriesKey}
	for _, p := range affected {
		keys = append(keys, cache.ProductKey(p.ID))
	}
	_ = uc.cache.Invalidate(ctx, cache.Invalidation{
		Keys:     keys,
		Prefixes: []string{cache.CategoryProductsPrefix(id), cache.ProductsPrefix},
	})
	out := toCategoryResponse(c)
	return &out, nil
}

func mapCategoryErr(err error, name string) error {
	if errors.Is(err, domain.ErrDuplicate) {
		return domain.Conflict("Category %s already exists", name)
	}
	return err
}

func toCategoryResponse(c *entity.Category) dto.CategoryResponse {
	return dto.CategoryResponse{ID: c.ID, Name: c.Name, Description: c.Description, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
}
