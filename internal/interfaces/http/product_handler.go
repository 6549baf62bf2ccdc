package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-api/internal/application/catalog"
	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/domain"
)

// ProductHandler maneja las peticiones HTTP para Product.
type ProductHandler struct {
	products *catalog.ProductUseCase
	stock    *catalog.StockUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(products *catalog.ProductUseCase, stock *catalog.StockUseCase) *ProductHandler {
	return &ProductHandler{products: products, stock: stock}
}

// List godoc
// @Summary      Listar productos
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        page_number  query  int  false  "Página"
// @Param        page_size    query  int  false  "Tamaño de página"
// @Success      200  {object}  dto.Page[dto.ProductResponse]
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	p, err := pagination(c)
	if err != nil {
		return err
	}
	out, err := h.products.List(c.UserContext(), p)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// ListByCategory godoc
// @Summary      Listar productos de una categoría
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        category_id  path   string  true   "ID de la categoría"
// @Param        page_number  query  int     false  "Página"
// @Param        page_size    query  int     false  "Tamaño de página"
// @Success      200  {object}  dto.Page[dto.ProductResponse]
// @Router       /products/category/{category_id} [get]
func (h *ProductHandler) ListByCategory(c *fiber.Ctx) error {
	p, err := pagination(c)
	if err != nil {
		return err
	}
	out, err := h.products.ListByCategory(c.UserContext(), c.Params("category_id"), p)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener producto por ID
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /products/{id} [get]
func (h *ProductHandler) Get(c *fiber.Ctx) error {
	out, err := h.products.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear producto
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "Datos del producto"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.products.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Actualizar producto o su stock
// @Description  Con ?quantity=N reserva N unidades, o las devuelve si previous_stock es true.
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id        path   string  true   "ID del producto"
// @Param        quantity  query  int     false  "Unidades a reservar o liberar"
// @Param        body      body   dto.UpdateProductRequest  false  "Campos a cambiar"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /products/{id} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	if raw := c.Query("quantity"); raw != "" {
		quantity, err := strconv.Atoi(raw)
		if err != nil {
			return domain.Validation("quantity must be an integer greater than 0")
		}
		var in dto.StockUpdateRequest
		if err := bindJSON(c, &in); err != nil {
			return err
		}
		var out *dto.ProductResponse
		if in.PreviousStock {
			out, err = h.stock.Release(c.UserContext(), id, quantity)
		} else {
			out, err = h.stock.Reserve(c.UserContext(), id, quantity)
		}
		if err != nil {
			return err
		}
		return c.JSON(out)
	}

	var in dto.UpdateProductRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.products.Update(c.UserContext(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar producto
// @Description  Cancela antes, en el servicio de órdenes, cada orden activa que lo contiene.
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.DeleteProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /products/{id} [delete]
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	out, err := h.products.Delete(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}
