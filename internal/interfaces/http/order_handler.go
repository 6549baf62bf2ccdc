package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/application/orders"
	"github.com/jhoicas/tienda-api/internal/domain"
)

// OrderHandler rutas del servicio de órdenes; la identidad llega por ForwardCredentials.
type OrderHandler struct {
	uc *orders.OrderUseCase
}

func NewOrderHandler(uc *orders.OrderUseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// List godoc
// @Summary      Listar órdenes
// @Description  Administradores y lectores ven todas; el resto sólo las propias.
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        page_number  query  int  false  "Página"
// @Param        page_size    query  int  false  "Tamaño de página"
// @Success      200  {object}  dto.Page[dto.OrderResponse]
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	p, err := pagination(c)
	if err != nil {
		return err
	}
	out, err := h.uc.List(c.UserContext(), GetCaller(c), p)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// ListByUser godoc
// @Summary      Listar órdenes de un usuario
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        user_id      path   int  true   "ID del usuario"
// @Param        page_number  query  int  false  "Página"
// @Param        page_size    query  int  false  "Tamaño de página"
// @Success      200  {object}  dto.Page[dto.OrderResponse]
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /orders/user/{user_id} [get]
func (h *OrderHandler) ListByUser(c *fiber.Ctx) error {
	userID, err := int64Param(c, "user_id")
	if err != nil {
		return err
	}
	p, err := pagination(c)
	if err != nil {
		return err
	}
	out, err := h.uc.ListByUser(c.UserContext(), GetCaller(c), userID, p)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

func (h *OrderHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetCaller(c), c.Params("order_id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Products godoc
// @Summary      Productos de una orden
// @Description  Snapshot actual de cada producto con la cantidad pedida. 403 si la orden está cancelada.
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        order_id     path   string  true   "ID de la orden"
// @Param        page_number  query  int     false  "Página"
// @Param        page_size    query  int     false  "Tamaño de página"
// @Success      200  {object}  dto.Page[dto.OrderProductResponse]
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /orders/{order_id}/products [get]
func (h *OrderHandler) Products(c *fiber.Ctx) error {
	p, err := pagination(c)
	if err != nil {
		return err
	}
	out, err := h.uc.Products(c.UserContext(), GetCaller(c), c.Params("order_id"), p)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear orden
// @Description  Valida stock de todas las líneas antes de reservar; si una reserva falla se liberan las anteriores.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "Líneas y dirección"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), GetCaller(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Actualizar orden
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Param        order_id  path  string  true  "ID de la orden"
// @Param        body      body  dto.UpdateOrderRequest  true  "Dirección o estado"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse  "orden cancelada"
// @Router       /orders/{order_id}/update [put]
func (h *OrderHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateOrderRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	if err := h.uc.Update(c.UserContext(), GetCaller(c), c.Params("order_id"), in); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Cancel godoc
// @Summary      Cancelar orden
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        order_id  path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      409  {object}  dto.ErrorResponse  "ya cancelada"
// @Router       /orders/{order_id}/cancel [put]
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	out, err := h.uc.Cancel(c.UserContext(), GetCaller(c), c.Params("order_id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// CascadeUser godoc
// @Summary      Cancelar las órdenes de un usuario que se elimina
// @Description  Lo llama el servicio de identidad. Sólo administradores o el propio usuario.
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        user_id  path  int  true  "ID del usuario"
// @Success      200  {object}  dto.CascadeReport
// @Router       /orders/cascade/users/{user_id} [post]
func (h *OrderHandler) CascadeUser(c *fiber.Ctx) error {
	userID, err := int64Param(c, "user_id")
	if err != nil {
		return err
	}
	caller := GetCaller(c)
	if !caller.IsAdmin() && caller.UserID != userID {
		return domain.Forbidden("not allowed for %s users", caller.Role)
	}
	out, err := h.uc.CascadeUser(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// CascadeProduct godoc
// @Summary      Cancelar las órdenes que contienen un producto que se elimina
// @Description  Lo llama el servicio de catálogo. Sólo administradores.
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        product_id  path  string  true  "ID del producto"
// @Success      200  {object}  dto.CascadeReport
// @Router       /orders/cascade/products/{product_id} [post]
func (h *OrderHandler) CascadeProduct(c *fiber.Ctx) error {
	caller := GetCaller(c)
	if !caller.IsAdmin() {
		return domain.Forbidden("not allowed for %s users", caller.Role)
	}
	out, err := h.uc.CascadeProduct(c.UserContext(), c.Params("product_id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}
