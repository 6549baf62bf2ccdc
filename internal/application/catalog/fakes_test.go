package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jhoicas/tienda-api/internal/application/cache"
	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Repos en memoria
// ──────────────────────────────────────────────────────────────────────────────

type memCatalog struct {
	mu         sync.Mutex
	products   map[string]*entity.Product
	categories map[string]*entity.Category
	// afterRead se ejecuta entre la lectura y la escritura en modo unguarded.
	afterRead func()
}

func newMemCatalog() *memCatalog {
	return &memCatalog{products: map[string]*entity.Product{}, categories: map[string]*entity.Category{}}
}

type fakeProducts struct{ db *memCatalog }

var (
	_ repository.ProductRepository = fakeProducts{}
	_ repository.StockRepository   = fakeProducts{}
)

func (f fakeProducts) Create(_ context.Context, p *entity.Product) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, other := range f.db.products {
		if other.Name == p.Name {
			return domain.ErrDuplicate
		}
	}
	cp := *p
	f.db.products[p.ID] = &cp
	return nil
}

func (f fakeProducts) GetByID(_ context.Context, id string) (*entity.Product, error) {
	f.db.mu.Lock()
	p, ok := f.db.products[id]
	var out *entity.Product
	if ok {
		cp := *p
		out = &cp
	}
	hook := f.db.afterRead
	f.db.mu.Unlock()
	if hook != nil {
		hook()
	}
	return out, nil
}

func (f fakeProducts) Update(_ context.Context, p *entity.Product) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	cp := *p
	f.db.products[p.ID] = &cp
	return nil
}

func (f fakeProducts) Delete(_ context.Context, id string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	delete(f.db.products, id)
	return nil
}

func (f fakeProducts) sorted(filter func(*entity.Product) bool) []*entity.Product {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []*entity.Product
	for _, p := range f.db.products {
		if filter(p) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func window[T any](all []T, limit, offset int) []T {
	if limit <= 0 {
		return all
	}
	if offset >= len(all) {
		return nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

func inCategory(id string) func(*entity.Product) bool {
	return func(p *entity.Product) bool { return p.CategoryID != nil && *p.CategoryID == id }
}

func (f fakeProducts) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	return window(f.sorted(func(*entity.Product) bool { return true }), limit, offset), nil
}

func (f fakeProducts) Count(context.Context) (int, error) {
	return len(f.sorted(func(*entity.Product) bool { return true })), nil
}

func (f fakeProducts) ListByCategory(_ context.Context, categoryID string, limit, offset int) ([]*entity.Product, error) {
	return window(f.sorted(inCategory(categoryID)), limit, offset), nil
}

func (f fakeProducts) CountByCategory(_ context.Context, categoryID string) (int, error) {
	return len(f.sorted(inCategory(categoryID))), nil
}

func (f fakeProducts) SetStock(_ context.Context, id string, stock int) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p, ok := f.db.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Stock = stock
	return nil
}

func (f fakeProducts) AdjustStock(_ context.Context, id string, delta int) (*entity.Product, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p, ok := f.db.products[id]
	if !ok || p.Stock+delta < 0 {
		return nil, nil
	}
	p.Stock += delta
	cp := *p
	return &cp, nil
}

type fakeCategories struct{ db *memCatalog }

var _ repository.CategoryRepository = fakeCategories{}

func (f fakeCategories) Create(_ context.Context, c *entity.Category) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, other := range f.db.categories {
		if other.Name == c.Name {
			return domain.ErrDuplicate
		}
	}
	cp := *c
	f.db.categories[c.ID] = &cp
	return nil
}

func (f fakeCategories) GetByID(_ context.Context, id string) (*entity.Category, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if c, ok := f.db.categories[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (f fakeCategories) Update(_ context.Context, c *entity.Category) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	cp := *c
	f.db.categories[c.ID] = &cp
	return nil
}

func (f fakeCategories) Delete(_ context.Context, id string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	delete(f.db.categories, id)
	for _, p := range f.db.products {
		if p.CategoryID != nil && *p.CategoryID == id {
			p.CategoryID = nil
		}
	}
	return nil
}

func (f fakeCategories) List(context.Context) ([]*entity.Category, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []*entity.Category
	for _, c := range f.db.categories {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type fakeCascader struct {
	calls  []string
	report *dto.CascadeReport
	err    error
}

func (f *fakeCascader) CascadeProduct(_ context.Context, productID string) (*dto.CascadeReport, error) {
	f.calls = append(f.calls, productID)
	if f.err != nil {
		return nil, f.err
	}
	if f.report != nil {
		return f.report, nil
	}
	return &dto.CascadeReport{CancelledOrders: []string{}, Failures: []dto.CascadeFailure{}}, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	db         *memCatalog
	store      *cache.MemoryStore
	cache      *cache.Cache
	orders     *fakeCascader
	products   *ProductUseCase
	categories *CategoryUseCase
}

func newFixture() *fixture {
	db := newMemCatalog()
	store := cache.NewMemoryStore()
	c := cache.New(store, cache.Options{}, zerolog.Nop())
	orders := &fakeCascader{}
	return &fixture{
		db:         db,
		store:      store,
		cache:      c,
		orders:     orders,
		products:   NewProductUseCase(fakeProducts{db}, fakeCategories{db}, orders, c, zerolog.Nop()),
		categories: NewCategoryUseCase(fakeCategories{db}, fakeProducts{db}, c),
	}
}

func (f *fixture) stock(mode string) *StockUseCase {
	return NewStockUseCase(fakeProducts{f.db}, fakeProducts{f.db}, mode, f.cache, zerolog.Nop())
}

func (f *fixture) stockOf(id string) int {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return f.db.products[id].Stock
}
