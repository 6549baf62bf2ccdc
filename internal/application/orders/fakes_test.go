package orders

import (
	"context"
	"errors"
	"fmt"
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
// Catálogo falso
// ──────────────────────────────────────────────────────────────────────────────

type fakeCatalog struct {
	mu    sync.Mutex
	stock map[string]int
	calls []string
	// failReserve / failRelease hacen fallar la llamada para ese producto.
	failReserve map[string]error
	failRelease map[string]error
}

var _ CatalogClient = (*fakeCatalog)(nil)

func newFakeCatalog(stock map[string]int) *fakeCatalog {
	return &fakeCatalog{stock: stock, failReserve: map[string]error{}, failRelease: map[string]error{}}
}

func (f *fakeCatalog) GetProduct(_ context.Context, id string) (*dto.ProductResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "get "+id)
	s, ok := f.stock[id]
	if !ok {
		return nil, &domain.UpstreamError{Service: "catalog", Status: 404}
	}
	return &dto.ProductResponse{ID: id, Name: "p-" + id[:4], Stock: s}, nil
}

func (f *fakeCatalog) ReserveStock(_ context.Context, id string, q int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf("reserve %s %d", id, q))
	if err := f.failReserve[id]; err != nil {
		return err
	}
	if f.stock[id] < q {
		return &domain.UpstreamError{Service: "catalog", Status: 400}
	}
	f.stock[id] -= q
	return nil
}

func (f *fakeCatalog) ReleaseStock(_ context.Context, id string, q int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf("release %s %d", id, q))
	if err := f.failRelease[id]; err != nil {
		return err
	}
	f.stock[id] += q
	return nil
}

func (f *fakeCatalog) stockOf(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stock[id]
}

func (f *fakeCatalog) mutations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		if c[:3] != "get" {
			out = append(out, c)
		}
	}
	return out
}

type fakeIdentity struct{ users map[int64]bool }

func (f fakeIdentity) GetUser(_ context.Context, id int64) (*dto.UserResponse, error) {
	if !f.users[id] {
		return nil, &domain.UpstreamError{Service: "identity", Status: 404}
	}
	return &dto.UserResponse{ID: id}, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Repo de órdenes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type fakeOrders struct {
	mu        sync.Mutex
	orders    map[string]*entity.Order
	failWrite error
}

var _ repository.OrderRepository = (*fakeOrders)(nil)

func clone(o *entity.Order) *entity.Order {
	cp := *o
	cp.Lines = append([]entity.OrderLine(nil), o.Lines...)
	return &cp
}

func (f *fakeOrders) Create(_ context.Context, o *entity.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrite != nil {
		return f.failWrite
	}
	f.orders[o.ID] = clone(o)
	return nil
}

func (f *fakeOrders) GetByID(_ context.Context, id string) (*entity.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.orders[id]; ok {
		return clone(o), nil
	}
	return nil, nil
}

func (f *fakeOrders) Update(_ context.Context, o *entity.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrite != nil {
		return f.failWrite
	}
	f.orders[o.ID] = clone(o)
	return nil
}

func (f *fakeOrders) filter(keep func(*entity.Order) bool) []*entity.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Order
	for _, o := range f.orders {
		if keep(o) {
			out = append(out, clone(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func window(all []*entity.Order, limit, offset int) []*entity.Order {
	if limit <= 0 {
		return all
	}
	if offset >= len(all) {
		return nil
	}
	return all[offset:min(offset+limit, len(all))]
}

func everyOrder(*entity.Order) bool { return true }

func ofUser(id int64) func(*entity.Order) bool {
	return func(o *entity.Order) bool { return o.UserID == id }
}

func (f *fakeOrders) List(_ context.Context, limit, offset int) ([]*entity.Order, error) {
	return window(f.filter(everyOrder), limit, offset), nil
}

func (f *fakeOrders) Count(context.Context) (int, error) { return len(f.filter(everyOrder)), nil }

func (f *fakeOrders) ListByUser(_ context.Context, userID int64, limit, offset int) ([]*entity.Order, error) {
	return window(f.filter(ofUser(userID)), limit, offset), nil
}

func (f *fakeOrders) CountByUser(_ context.Context, userID int64) (int, error) {
	return len(f.filter(ofUser(userID))), nil
}

func (f *fakeOrders) ListActiveByUser(_ context.Context, userID int64) ([]*entity.Order, error) {
	return f.filter(func(o *entity.Order) bool { return o.UserID == userID && !o.IsCancelled() }), nil
}

func (f *fakeOrders) ListActiveByProduct(_ context.Context, productID string) ([]*entity.Order, error) {
	return f.filter(func(o *entity.Order) bool {
		if o.IsCancelled() {
			return false
		}
		for _, l := range o.Lines {
			if l.ProductID == productID {
				return true
			}
		}
		return false
	}), nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

const (
	pA = "6f1c2a34-0000-4000-8000-00000000000a"
	pB = "6f1c2a34-0000-4000-8000-00000000000b"
	pC = "6f1c2a34-0000-4000-8000-00000000000c"
)

var (
	admin  = Caller{UserID: 1, Role: entity.RoleAdministrator}
	reader = Caller{UserID: 2, Role: entity.RoleReader}
	ana    = Caller{UserID: 10, Role: entity.RoleCustomer}
	beto   = Caller{UserID: 11, Role: entity.RoleCustomer}

	errRed = errors.New("connection reset")
)

type fixture struct {
	catalog *fakeCatalog
	repo    *fakeOrders
	store   *cache.MemoryStore
	uc      *OrderUseCase
}

func newFixture() *fixture {
	catalog := newFakeCatalog(map[string]int{pA: 10, pB: 5, pC: 2})
	repo := &fakeOrders{orders: map[string]*entity.Order{}}
	store := cache.NewMemoryStore()
	c := cache.New(store, cache.Options{}, zerolog.Nop())
	identity := fakeIdentity{users: map[int64]bool{1: true, 2: true, 10: true, 11: true}}
	return &fixture{
		catalog: catalog,
		repo:    repo,
		store:   store,
		uc:      NewOrderUseCase(repo, catalog, identity, c, zerolog.Nop()),
	}
}

func orderLines(pairs ...any) []dto.OrderLine {
	var out []dto.OrderLine
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, dto.OrderLine{ProductID: pairs[i].(string), Quantity: pairs[i+1].(int)})
	}
	return out
}
