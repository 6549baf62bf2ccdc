package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/tienda-api/internal/application/cache"
	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

// UserUseCase CRUD de usuarios; el borrado dispara la cascada sobre órdenes.
type UserUseCase struct {
	users  repository.UserRepository
	roles  *RoleUseCase
	tx     TxRunner
	orders OrderCascader
	cache  *cache.Cache
	log    zerolog.Logger
}

func NewUserUseCase(users repository.UserRepository, roles *RoleUseCase, tx TxRunner, orders OrderCascader, c *cache.Cache, log zerolog.Logger) *UserUseCase {
	return &UserUseCase{users: users, roles: roles, tx: tx, orders: orders, cache: c, log: log}
}

func (uc *UserUseCase) List(ctx context.Context, p dto.Pagination) (*dto.Page[dto.UserResponse], error) {
	return cache.Fetch(ctx, uc.cache, cache.UsersKey(p.Descriptor()), func(ctx context.Context) (*dto.Page[dto.UserResponse], error) {
		total, err := uc.users.Count(ctx)
		if err != nil {
			return nil, err
		}
		list, err := uc.users.List(ctx, p.Limit(), p.Offset())
		if err != nil {
			return nil, err
		}
		return dto.NewPage(toUserResponses(list), p, total, "users")
	})
}

func (uc *UserUseCase) ListByRole(ctx context.Context, roleID int64, p dto.Pagination) (*dto.Page[dto.UserResponse], error) {
	if _, err := uc.roles.Get(ctx, roleID); err != nil {
		return nil, err
	}
	return cache.Fetch(ctx, uc.cache, cache.RoleUsersKey(roleID, p.Descriptor()), func(ctx context.Context) (*dto.Page[dto.UserResponse], error) {
		total, err := uc.users.CountByRole(ctx, roleID)
		if err != nil {
			return nil, err
		}
		list, err := uc.users.ListByRole(ctx, roleID, p.Limit(), p.Offset())
		if err != nil {
			return nil, err
		}
		return dto.NewPage(toUserResponses(list), p, total, "users")
	})
}

// Get devuelve el usuario o ErrNotFound. También lo consulta el servicio de órdenes.
func (uc *UserUseCase) Get(ctx context.Context, id int64) (*dto.UserResponse, error) {
	return cache.Fetch(ctx, uc.cache, cache.UserKey(id), func(ctx context.Context) (*dto.UserResponse, error) {
		u, err := uc.users.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if u == nil {
			return nil, domain.NotFound("User id %d not found", id)
		}
		out := toUserResponse(u)
		return &out, nil
	})
}

func (uc *UserUseCase) Create(ctx context.Context, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	roleID := entity.DefaultRoleID
	if in.RoleID != nil {
		roleID = *in.RoleID
	}
	if err := uc.requireRole(ctx, roleID); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &entity.User{Name: in.Name, Email: strings.ToLower(in.Email), PasswordHash: string(hash), RoleID: &roleID}
	if err := uc.users.Create(ctx, u); err != nil {
		return nil, mapUserErr(err)
	}
	_ = uc.cache.Invalidate(ctx, cache.Invalidation{Prefixes: []string{cache.UsersPrefix}})
	out := toUserResponse(u)
	return &out, nil
}

// Update aplica el patch. Si cambia el password, el refresh token del usuario se destruye.
func (uc *UserUseCase) Update(ctx context.Context, id int64, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	u, err := uc.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.NotFound("User id %d not found", id)
	}
	var oldRole *int64
	if u.RoleID != nil {
		r := *u.RoleID
		oldRole = &r
	}
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Email != nil {
		u.Email = strings.ToLower(*in.Email)
	}
	if in.RoleID != nil {
		if err := uc.requireRole(ctx, *in.RoleID); err != nil {
			return nil, err
		}
		u.RoleID = in.RoleID
	}
	if in.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = string(hash)
	}

	err = uc.tx.RunIdentity(ctx, func(users repository.UserRepository, tokens repository.TokenRepository) error {
		if err := users.Update(ctx, u); err != nil {
			return err
		}
		if in.Password != nil {
			return tokens.DeleteByUserID(ctx, id)
		}
		return nil
	})
	if err != nil {
		return nil, mapUserErr(err)
	}

	inv := cache.Invalidation{Keys: []string{cache.UserKey(id)}, Prefixes: []string{cache.UsersPrefix}}
	if oldRole != nil {
		inv.Prefixes = append(inv.Prefixes, cache.RoleUsersPrefix(*oldRole))
	}
	_ = uc.cache.Invalidate(ctx, inv)
	out := toUserResponse(u)
	return &out, nil
}

// Delete cancela primero las órdenes del usuario en el servicio de órdenes (restaurando stock)
// y luego borra tokens y usuario. Si la cascada no se puede ejecutar, el usuario no se borra.
func (uc *UserUseCase) Delete(ctx context.Context, id int64) (*dto.DeleteUserResponse, error) {
	u, err := uc.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.NotFound("User id %d not found", id)
	}

	report, err := uc.orders.CascadeUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(report.Failures) > 0 {
		uc.log.Warn().Int64("user_id", id).Int("failures", len(report.Failures)).
			Msg("cascada de usuario con órdenes sin cancelar")
	}

	err = uc.tx.RunIdentity(ctx, func(users repository.UserRepository, tokens repository.TokenRepository) error {
		if err := tokens.DeleteByUserID(ctx, id); err != nil {
			return err
		}
		return users.Delete(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	_ = uc.cache.Invalidate(ctx, cache.Invalidation{Keys: []string{cache.UserKey(id)}, Prefixes: []string{cache.UsersPrefix}})
	return &dto.DeleteUserResponse{User: toUserResponse(u), Cascade: report}, nil
}

func (uc *UserUseCase) requireRole(ctx context.Context, roleID int64) error {
	if _, err := uc.roles.Get(ctx, roleID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Validation("Role id %d not found", roleID)
		}
		return err
	}
	return nil
}

func mapUserErr(err error) error {
	if errors.Is(err, domain.ErrEmailAlreadyExists) {
		return domain.Conflict("name or email already registered")
	}
	return err
}

func toUserResponse(u *entity.User) dto.UserResponse {
	return dto.UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, RoleID: u.RoleID, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt}
}

func toUserResponses(list []*entity.User) []dto.UserResponse {
	out := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		out = append(out, toUserResponse(u))
	}
	return out
}
