package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	Name        string          `json:"name" validate:"required,max=100"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"min=0"`
	CategoryID  *string         `json:"category_id" validate:"omitempty,uuid"`
}

// UpdateProductRequest patch de producto; el stock se cambia vía PUT con quantity.
type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	CategoryID  *string          `json:"category_id" validate:"omitempty,uuid"`
}

// StockUpdateRequest cuerpo del PUT /products/:id?quantity=N que envía el servicio de órdenes.
type StockUpdateRequest struct {
	OriginalPath  string `json:"original_path"`
	PreviousStock bool   `json:"previous_stock"`
}

// ProductResponse snapshot de un producto; también lo consume el servicio de órdenes.
type ProductResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	CategoryID  *string         `json:"category_id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// DeleteProductResponse producto eliminado más la cascada sobre órdenes.
type DeleteProductResponse struct {
	Product ProductResponse `json:"product"`
	Cascade *CascadeReport  `json:"cascade"`
}

// CategoryRequest alta o actualización de categoría.
type CategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
}

// CategoryResponse salida de una categoría.
type CategoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
