package dto

import "time"

// OrderLine línea de pedido en la API (_id es el id del producto).
type OrderLine struct {
	ProductID string `json:"_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"min=1"`
}

// CreateOrderRequest user_id sólo lo puede enviar un administrador.
type CreateOrderRequest struct {
	Products        []OrderLine `json:"products" validate:"required,min=1,unique=ProductID,dive"`
	DeliveryAddress string      `json:"delivery_address" validate:"required,max=255"`
	Status          string      `json:"status" validate:"omitempty,order_status"`
	UserID          *int64      `json:"user_id" validate:"omitempty,min=1"`
}

// UpdateOrderRequest sólo dirección y estado son modificables.
type UpdateOrderRequest struct {
	DeliveryAddress *string `json:"delivery_address" validate:"omitempty,min=1,max=255"`
	Status          *string `json:"status" validate:"omitempty,order_status"`
}

// OrderResponse salida de una orden.
type OrderResponse struct {
	ID              string      `json:"id"`
	Products        []OrderLine `json:"products"`
	DeliveryAddress string      `json:"delivery_address"`
	Status          string      `json:"status"`
	UserID          int64       `json:"user_id"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// OrderProductResponse snapshot vivo del producto con la cantidad pedida.
type OrderProductResponse struct {
	ProductResponse
	Quantity int `json:"quantity"`
}

// CascadeFailure orden que no se pudo cancelar durante una cascada.
type CascadeFailure struct {
	OrderID string `json:"order_id"`
	Error   string `json:"error"`
}

// CascadeReport resultado agregado de una cascada; Failures vacío si todo salió bien.
type CascadeReport struct {
	CancelledOrders []string         `json:"cancelled_orders"`
	Failures        []CascadeFailure `json:"failures"`
}
