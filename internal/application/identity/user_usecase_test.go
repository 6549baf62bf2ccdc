package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-api/internal/application/cache"
	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
)

func ptr[T any](v T) *T { return &v }

func TestUserCreate_RolInexistente(t *testing.T) {
	f := newFixture()
	_, err := f.users.Create(context.Background(), dto.CreateUserRequest{
		Name: "juana", Email: "juana@example.com", Password: "Secreta123", RoleID: ptr(int64(42)),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUserCreate_Duplicado(t *testing.T) {
	f := newFixture()
	f.seedUser("juana", 3)
	_, err := f.users.Create(context.Background(), dto.CreateUserRequest{
		Name: "juana", Email: "otra@example.com", Password: "Secreta123",
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestUserList_PaginaYCache(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	for _, n := range []string{"ana", "beto", "caro"} {
		f.seedUser(n, 3)
	}

	page, err := f.users.List(ctx, dto.Pagination{PageNumber: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "caro", page.Items[0].Name)
	assert.Contains(t, f.store.Keys(), "users:page_number:2:page_size:2")

	_, err = f.users.List(ctx, dto.Pagination{PageNumber: 3, PageSize: 2})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserUpdate_CambioDePasswordCierraSesion(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := f.seedUser("ana", 3)
	require.NoError(t, fakeTokens{f.db}.Create(ctx, &entity.Token{Value: "r", UserID: u.ID}))

	_, err := f.users.Update(ctx, u.ID, dto.UpdateUserRequest{Password: ptr("NuevaClave1")})
	require.NoError(t, err)

	tok, _ := fakeTokens{f.db}.GetByUserID(ctx, u.ID)
	assert.Nil(t, tok)
}

func TestUserUpdate_InvalidaCacheDelUsuario(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := f.seedUser("ana", 3)

	before, err := f.users.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana", before.Name)

	_, err = f.users.Update(ctx, u.ID, dto.UpdateUserRequest{Name: ptr("anita")})
	require.NoError(t, err)

	after, err := f.users.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "anita", after.Name)
}

func TestUserDelete_CascadaYBorrado(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := f.seedUser("ana", 3)
	require.NoError(t, fakeTokens{f.db}.Create(ctx, &entity.Token{Value: "r", UserID: u.ID}))
	f.cascader.report = &dto.CascadeReport{CancelledOrders: []string{"o1", "o2"}}
	_, _ = f.users.Get(ctx, u.ID)

	out, err := f.users.Delete(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{u.ID}, f.cascader.calls)
	assert.Equal(t, []string{"o1", "o2"}, out.Cascade.CancelledOrders)

	left, _ := fakeUsers{f.db}.GetByID(ctx, u.ID)
	assert.Nil(t, left)
	tok, _ := fakeTokens{f.db}.GetByUserID(ctx, u.ID)
	assert.Nil(t, tok)
	assert.NotContains(t, f.store.Keys(), cache.UserKey(u.ID))
}

func TestUserDelete_CascadaCaidaNoBorra(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := f.seedUser("ana", 3)
	f.cascader.err = &domain.UpstreamError{Service: "orders", Err: errors.New("connection refused")}

	_, err := f.users.Delete(ctx, u.ID)
	require.ErrorIs(t, err, domain.ErrUpstream)

	left, _ := fakeUsers{f.db}.GetByID(ctx, u.ID)
	assert.NotNil(t, left)
}

func TestUserDelete_Inexistente(t *testing.T) {
	f := newFixture()
	_, err := f.users.Delete(context.Background(), 12345)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, f.cascader.calls)
}

func TestRoleDelete_InvalidaUsuariosDelRol(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	r, err := f.roles.Create(ctx, dto.RoleRequest{Name: "auditor"})
	require.NoError(t, err)
	u := f.seedUser("ana", r.ID)
	other := f.seedUser("beto", 3)

	_, err = f.users.ListByRole(ctx, r.ID, dto.AllItems)
	require.NoError(t, err)
	_, _ = f.users.Get(ctx, u.ID)
	_, _ = f.users.Get(ctx, other.ID)

	_, err = f.roles.Delete(ctx, r.ID)
	require.NoError(t, err)

	keys := f.store.Keys()
	assert.NotContains(t, keys, cache.RoleUsersKey(r.ID, "all"))
	assert.NotContains(t, keys, cache.UserKey(u.ID))
	assert.NotContains(t, keys, cache.RoleKey(r.ID))
	assert.Contains(t, keys, cache.UserKey(other.ID))

	got, err := f.users.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, got.RoleID)
}

func TestRoleCreate_NombreRepetido(t *testing.T) {
	f := newFixture()
	_, err := f.roles.Create(context.Background(), dto.RoleRequest{Name: "reader"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}
