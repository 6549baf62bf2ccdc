package http_test

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Repos de identidad en memoria
// ──────────────────────────────────────────────────────────────────────────────

type store struct {
	mu     sync.Mutex
	users  map[int64]entity.User
	roles  map[int64]entity.Role
	tokens map[int64]entity.Token
}

func newStore() *store {
	s := &store{users: map[int64]entity.User{}, roles: map[int64]entity.Role{}, tokens: map[int64]entity.Token{}}
	for id, name := range map[int64]string{1: entity.RoleAdministrator, 2: entity.RoleReader, 3: entity.RoleCustomer} {
		s.roles[id] = entity.Role{ID: id, Name: name}
	}
	return s
}

func (s *store) addUser(id, roleID int64, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id] = entity.User{ID: id, Name: name, Email: name + "@tienda.test", RoleID: &roleID}
}

type users struct{ s *store }

var _ repository.UserRepository = users{}

func (u users) Create(_ context.Context, user *entity.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	user.ID = int64(len(u.s.users) + 100)
	u.s.users[user.ID] = *user
	return nil
}

func (u users) GetByID(_ context.Context, id int64) (*entity.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if v, ok := u.s.users[id]; ok {
		return &v, nil
	}
	return nil, nil
}

func (u users) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for _, v := range u.s.users {
		if v.Email == email {
			return &v, nil
		}
	}
	return nil, nil
}

func (u users) Update(_ context.Context, user *entity.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	u.s.users[user.ID] = *user
	return nil
}

func (u users) Delete(_ context.Context, id int64) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	delete(u.s.users, id)
	return nil
}

func (u users) all(keep func(entity.User) bool) []*entity.User {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	var out []*entity.User
	for _, v := range u.s.users {
		if keep(v) {
			v := v
			out = append(out, &v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (u users) List(context.Context, int, int) ([]*entity.User, error) {
	return u.all(func(entity.User) bool { return true }), nil
}

func (u users) Count(ctx context.Context) (int, error) {
	l, _ := u.List(ctx, 0, 0)
	return len(l), nil
}

func (u users) ListByRole(_ context.Context, roleID int64, _, _ int) ([]*entity.User, error) {
	return u.all(func(v entity.User) bool { return v.RoleID != nil && *v.RoleID == roleID }), nil
}

func (u users) CountByRole(ctx context.Context, roleID int64) (int, error) {
	l, _ := u.ListByRole(ctx, roleID, 0, 0)
	return len(l), nil
}

type roles struct{ s *store }

var _ repository.RoleRepository = roles{}

func (r roles) Create(_ context.Context, role *entity.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	role.ID = int64(len(r.s.roles) + 1)
	r.s.roles[role.ID] = *role
	return nil
}

func (r roles) GetByID(_ context.Context, id int64) (*entity.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if v, ok := r.s.roles[id]; ok {
		return &v, nil
	}
	return nil, nil
}

func (r roles) Update(_ context.Context, role *entity.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.roles[role.ID] = *role
	return nil
}

func (r roles) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.roles, id)
	return nil
}

func (r roles) List(context.Context) ([]*entity.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Role
	for _, v := range r.s.roles {
		v := v
		out = append(out, &v)
	}
	return out, nil
}

type tokens struct{ s *store }

var _ repository.TokenRepository = tokens{}

func (t tokens) Create(_ context.Context, tok *entity.Token) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if _, ok := t.s.tokens[tok.UserID]; ok {
		return domain.Conflict("User already logged in")
	}
	t.s.tokens[tok.UserID] = *tok
	return nil
}

func (t tokens) GetByUserID(_ context.Context, userID int64) (*entity.Token, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if v, ok := t.s.tokens[userID]; ok {
		return &v, nil
	}
	return nil, nil
}

func (t tokens) GetByValue(_ context.Context, value string) (*entity.Token, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for _, v := range t.s.tokens {
		if v.Value == value {
			return &v, nil
		}
	}
	return nil, nil
}

func (t tokens) DeleteByUserID(_ context.Context, userID int64) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	delete(t.s.tokens, userID)
	return nil
}

type tx struct{ s *store }

func (x tx) RunIdentity(_ context.Context, fn func(repository.UserRepository, repository.TokenRepository) error) error {
	return fn(users{x.s}, tokens{x.s})
}

type cascader struct{ calls []int64 }

func (c *cascader) CascadeUser(_ context.Context, userID int64) (*dto.CascadeReport, error) {
	c.calls = append(c.calls, userID)
	return &dto.CascadeReport{CancelledOrders: []string{}, Failures: []dto.CascadeFailure{}}, nil
}
