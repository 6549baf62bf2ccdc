package identity

import (
	"context"
	"errors"

	"github.com/jhoicas/tienda-api/internal/application/cache"
	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

// RoleUseCase CRUD de roles con lecturas cacheadas.
type RoleUseCase struct {
	roles repository.RoleRepository
	users repository.UserRepository
	cache *cache.Cache
}

func NewRoleUseCase(roles repository.RoleRepository, users repository.UserRepository, c *cache.Cache) *RoleUseCase {
	return &RoleUseCase{roles: roles, users: users, cache: c}
}

func (uc *RoleUseCase) List(ctx context.Context) ([]dto.RoleResponse, error) {
	list, err := cache.Fetch(ctx, uc.cache, cache.RolesKey, func(ctx context.Context) ([]dto.RoleResponse, error) {
		roles, err := uc.roles.List(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]dto.RoleResponse, 0, len(roles))
		for _, r := range roles {
			out = append(out, toRoleResponse(r))
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, domain.NotFound("No roles found")
	}
	return list, nil
}

// Get devuelve el rol o ErrNotFound.
func (uc *RoleUseCase) Get(ctx context.Context, id int64) (*dto.RoleResponse, error) {
	return cache.Fetch(ctx, uc.cache, cache.RoleKey(id), func(ctx context.Context) (*dto.RoleResponse, error) {
		r, err := uc.roles.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if r == nil {
			return nil, domain.NotFound("Role id %d not found", id)
		}
		out := toRoleResponse(r)
		return &out, nil
	})
}

func (uc *RoleUseCase) Create(ctx context.Context, in dto.RoleRequest) (*dto.RoleResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	r := &entity.Role{Name: in.Name}
	if err := uc.roles.Create(ctx, r); err != nil {
		return nil, mapRoleErr(err, in.Name)
	}
	_ = uc.cache.Invalidate(ctx, cache.Invalidation{Keys: []string{cache.RolesKey}})
	out := toRoleResponse(r)
	return &out, nil
}

func (uc *RoleUseCase) Update(ctx context.Context, id int64, in dto.RoleRequest) (*dto.RoleResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	r, err := uc.roles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.NotFound("Role id %d not found", id)
	}
	r.Name = in.Name
	if err := uc.roles.Update(ctx, r); err != nil {
		return nil, mapRoleErr(err, in.Name)
	}
	uc.invalidateRole(ctx, id)
	out := toRoleResponse(r)
	return &out, nil
}

// Delete elimina el rol; sus usuarios quedan sin rol y sus entradas de caché se invalidan.
func (uc *RoleUseCase) Delete(ctx context.Context, id int64) (*dto.RoleResponse, error) {
	r, err := uc.roles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.NotFound("Role id %d not found", id)
	}
	affected, err := uc.users.ListByRole(ctx, id, 0, 0)
	if err != nil {
		return nil, err
	}
	if err := uc.roles.Delete(ctx, id); err != nil {
		return nil, err
	}
	uc.invalidateRole(ctx, id)
	keys := make([]string, 0, len(affected))
	for _, u := range affected {
		keys = append(keys, cache.UserKey(u.ID))
	}
	_ = uc.cache.Invalidate(ctx, cache.Invalidation{Keys: keys, Prefixes: []string{cache.UsersPrefix}})
	out := toRoleResponse(r)
	return &out, nil
}

func (uc *RoleUseCase) invalidateRole(ctx context.Context, id int64) {
	_ = uc.cache.Invalidate(ctx, cache.Invalidation{
		Keys:     []string{cache.RoleKey(id), cache.RolesKey},
		Prefixes: []string{cache.RoleUsersPrefix(id)},
	})
}

// invalidateUserLists borra los listados de usuarios (globales y por rol).
func (uc *RoleUseCase) invalidateUserLists(ctx context.Context) {
	_ = uc.cache.Invalidate(ctx, cache.Invalidation{Prefixes: []string{cache.UsersPrefix}})
}

func mapRoleErr(err error, name string) error {
	if errors.Is(err, domain.ErrDuplicate) {
		return domain.Conflict("Role %s already exists", name)
	}
	return err
}

func toRoleResponse(r *entity.Role) dto.RoleResponse {
	return dto.RoleResponse{ID: r.ID, Name: r.Name, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
}
