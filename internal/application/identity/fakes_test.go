package identity

import (
	"context"
	"sort"
	"sync"
	"time"

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

type memDB struct {
	mu     sync.Mutex
	users  map[int64]*entity.User
	roles  map[int64]*entity.Role
	tokens map[int64]*entity.Token // por user_id
	nextID int64
}

func newMemDB() *memDB {
	db := &memDB{users: map[int64]*entity.User{}, roles: map[int64]*entity.Role{}, tokens: map[int64]*entity.Token{}, nextID: 100}
	for id, name := range map[int64]string{1: entity.RoleAdministrator, 2: entity.RoleReader, 3: entity.RoleCustomer} {
		db.roles[id] = &entity.Role{ID: id, Name: name}
	}
	return db
}

type fakeUsers struct{ db *memDB }

var _ repository.UserRepository = fakeUsers{}

func (f fakeUsers) Create(_ context.Context, u *entity.User) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, other := range f.db.users {
		if other.Email == u.Email || other.Name == u.Name {
			return domain.ErrEmailAlreadyExists
		}
	}
	f.db.nextID++
	u.ID = f.db.nextID
	u.CreatedAt, u.UpdatedAt = time.Now(), time.Now()
	cp := *u
	f.db.users[u.ID] = &cp
	return nil
}

func (f fakeUsers) GetByID(_ context.Context, id int64) (*entity.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if u, ok := f.db.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (f fakeUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, u := range f.db.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f fakeUsers) Update(_ context.Context, u *entity.User) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.users[u.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *u
	f.db.users[u.ID] = &cp
	return nil
}

func (f fakeUsers) Delete(_ context.Context, id int64) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	delete(f.db.users, id)
	return nil
}

func (f fakeUsers) sorted(filter func(*entity.User) bool) []*entity.User {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []*entity.User
	for _, u := range f.db.users {
		if filter(u) {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
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

func (f fakeUsers) List(_ context.Context, limit, offset int) ([]*entity.User, error) {
	return window(f.sorted(func(*entity.User) bool { return true }), limit, offset), nil
}

func (f fakeUsers) Count(ctx context.Context) (int, error) {
	l, _ := f.List(ctx, 0, 0)
	return len(l), nil
}

func hasRole(roleID int64) func(*entity.User) bool {
	return func(u *entity.User) bool { return u.RoleID != nil && *u.RoleID == roleID }
}

func (f fakeUsers) ListByRole(_ context.Context, roleID int64, limit, offset int) ([]*entity.User, error) {
	return window(f.sorted(hasRole(roleID)), limit, offset), nil
}

func (f fakeUsers) CountByRole(_ context.Context, roleID int64) (int, error) {
	return len(f.sorted(hasRole(roleID))), nil
}

type fakeRoles struct{ db *memDB }

var _ repository.RoleRepository = fakeRoles{}

func (f fakeRoles) Create(_ context.Context, r *entity.Role) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, other := range f.db.roles {
		if other.Name == r.Name {
			return domain.ErrDuplicate
		}
	}
	f.db.nextID++
	r.ID = f.db.nextID
	cp := *r
	f.db.roles[r.ID] = &cp
	return nil
}

func (f fakeRoles) GetByID(_ context.Context, id int64) (*entity.Role, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if r, ok := f.db.roles[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, nil
}

func (f fakeRoles) Update(_ context.Context, r *entity.Role) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	cp := *r
	f.db.roles[r.ID] = &cp
	return nil
}

func (f fakeRoles) Delete(_ context.Context, id int64) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	delete(f.db.roles, id)
	for _, u := range f.db.users {
		if u.RoleID != nil && *u.RoleID == id {
			u.RoleID = nil
		}
	}
	return nil
}

func (f fakeRoles) List(_ context.Context) ([]*entity.Role, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []*entity.Role
	for _, r := range f.db.roles {
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeTokens struct{ db *memDB }

var _ repository.TokenRepository = fakeTokens{}

func (f fakeTokens) Create(_ context.Context, t *entity.Token) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.tokens[t.UserID]; ok {
		return domain.Conflict("User already logged in")
	}
	cp := *t
	f.db.tokens[t.UserID] = &cp
	return nil
}

func (f fakeTokens) GetByUserID(_ context.Context, userID int64) (*entity.Token, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if t, ok := f.db.tokens[userID]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (f fakeTokens) GetByValue(_ context.Context, value string) (*entity.Token, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, t := range f.db.tokens {
		if t.Value == value {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (f fakeTokens) DeleteByUserID(_ context.Context, userID int64) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	delete(f.db.tokens, userID)
	return nil
}

type fakeTx struct{ db *memDB }

func (f fakeTx) RunIdentity(_ context.Context, fn func(repository.UserRepository, repository.TokenRepository) error) error {
	return fn(fakeUsers{f.db}, fakeTokens{f.db})
}

type fakeCascader struct {
	calls  []int64
	report *dto.CascadeReport
	err    error
}

func (f *fakeCascader) CascadeUser(_ context.Context, userID int64) (*dto.CascadeReport, error) {
	f.calls = append(f.calls, userID)
	if f.err != nil {
		return nil, f.err
	}
	if f.report != nil {
		return f.report, nil
	}
	return &dto.CascadeReport{}, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Ensamblado
// ──────────────────────────────────────────────────────────────────────────────

const (
	testAccessSecret  = "access-secret-for-tests"
	testRefreshSecret = "refresh-secret-for-tests"
)

type fixture struct {
	db       *memDB
	store    *cache.MemoryStore
	auth     *AuthUseCase
	users    *UserUseCase
	roles    *RoleUseCase
	cascader *fakeCascader
}

func newFixture() *fixture {
	db := newMemDB()
	store := cache.NewMemoryStore()
	c := cache.New(store, cache.Options{TTL: time.Minute}, zerolog.Nop())
	roles := NewRoleUseCase(fakeRoles{db}, fakeUsers{db}, c)
	cascader := &fakeCascader{}
	users := NewUserUseCase(fakeUsers{db}, roles, fakeTx{db}, cascader, c, zerolog.Nop())
	auth := NewAuthUseCase(fakeUsers{db}, fakeTokens{db}, roles, fakeTx{db}, JWTConfig{
		AccessSecret:      testAccessSecret,
		RefreshSecret:     testRefreshSecret,
		AccessExpMinutes:  15,
		RefreshExpMinutes: 60,
		Issuer:            "test",
	})
	return &fixture{db: db, store: store, auth: auth, users: users, roles: roles, cascader: cascader}
}

// seedUser crea un usuario con el rol dado directamente en el repo.
func (f *fixture) seedUser(name string, roleID int64) *entity.User {
	u := &entity.User{Name: name, Email: name + "@example.com", PasswordHash: "x", RoleID: &roleID}
	_ = fakeUsers{f.db}.Create(context.Background(), u)
	return u
}
