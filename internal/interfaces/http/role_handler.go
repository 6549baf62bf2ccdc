package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/application/identity"
)

// RoleHandler CRUD de roles.
type RoleHandler struct {
	uc *identity.RoleUseCase
}

func NewRoleHandler(uc *identity.RoleUseCase) *RoleHandler {
	return &RoleHandler{uc: uc}
}

// List godoc
// @Summary      Listar roles
// @Tags         roles
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.RoleResponse
// @Router       /roles [get]
func (h *RoleHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(out)
}

func (h *RoleHandler) Get(c *fiber.Ctx) error {
	id, err := int64Param(c, "role_id")
	if err != nil {
		return err
	}
	out, err := h.uc.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

func (h *RoleHandler) Create(c *fiber.Ctx) error {
	var in dto.RoleRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *RoleHandler) Update(c *fiber.Ctx) error {
	id, err := int64Param(c, "role_id")
	if err != nil {
		return err
	}
	var in dto.RoleRequest
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
// @Summary      Eliminar rol
// @Description  Los usuarios del rol quedan sin rol.
// @Tags         roles
// @Security     Bearer
// @Produce      json
// @Param        role_id  path  int  true  "ID del rol"
// @Success      200  {object}  dto.RoleResponse
// @Router       /roles/{role_id} [delete]
func (h *RoleHandler) Delete(c *fiber.Ctx) error {
	id, err := int64Param(c, "role_id")
	if err != nil {
		return err
	}
	out, err := h.uc.Delete(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}
