package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/application/identity"
	"github.com/jhoicas/tienda-api/internal/domain"
)

// UserHandler CRUD de usuarios (protegido).
type UserHandler struct {
	uc *identity.UserUseCase
}

func NewUserHandler(uc *identity.UserUseCase) *UserHandler {
	return &UserHandler{uc: uc}
}

// List godoc
// @Summary      Listar usuarios
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Param        page_number  query  int  false  "Página"
// @Param        page_size    query  int  false  "Tamaño de página"
// @Success      200  {object}  dto.Page[dto.UserResponse]
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	p, err := pagination(c)
	if err != nil {
		return err
	}
	out, err := h.uc.List(c.UserContext(), p)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// ListByRole godoc
// @Summary      Listar usuarios de un rol
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Param        role_id      path   int  true   "ID del rol"
// @Param        page_number  query  int  false  "Página"
// @Param        page_size    query  int  false  "Tamaño de página"
// @Success      200  {object}  dto.Page[dto.UserResponse]
// @Router       /users/role/{role_id} [get]
func (h *UserHandler) ListByRole(c *fiber.Ctx) error {
	roleID, err := int64Param(c, "role_id")
	if err != nil {
		return err
	}
	p, err := pagination(c)
	if err != nil {
		return err
	}
	out, err := h.uc.ListByRole(c.UserContext(), roleID, p)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener usuario
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Param        user_id  path  int  true  "ID del usuario"
// @Success      200  {object}  dto.UserResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /users/{user_id} [get]
func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, err := int64Param(c, "user_id")
	if err != nil {
		return err
	}
	out, err := h.uc.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear usuario
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateUserRequest  true  "Datos del usuario"
// @Success      201   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /users [post]
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateUserRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Actualizar usuario
// @Description  Un usuario puede editar sus datos, nunca su propio role_id.
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        user_id  path  int  true  "ID del usuario"
// @Param        body     body  dto.UpdateUserRequest  true  "Campos a cambiar"
// @Success      200  {object}  dto.UserResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /users/{user_id} [put]
func (h *UserHandler) Update(c *fiber.Ctx) error {
	id, err := int64Param(c, "user_id")
	if err != nil {
		return err
	}
	var in dto.UpdateUserRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar usuario
// @Description  Cancela antes las órdenes activas del usuario en el servicio de órdenes.
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Param        user_id  path  int  true  "ID del usuario"
// @Success      200  {object}  dto.DeleteUserResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /users/{user_id} [delete]
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id, err := int64Param(c, "user_id")
	if err != nil {
		return err
	}
	out, err := h.uc.Delete(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

func int64Param(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id < 1 {
		return 0, domain.Validation("%s must be a positive integer", name)
	}
	return id, nil
}
