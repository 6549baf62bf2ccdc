package entity

import (
	"slices"
	"time"
)

// Estados de una orden. cancelled es terminal.
const (
	OrderPending    = "pending"
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"
)

// OrderLine producto y cantidad (>= 1). El producto es único dentro de la orden.
type OrderLine struct {
	ProductID string
	Quantity  int
}

// Order pedido de un usuario; sus líneas no cambian después de creada.
type Order struct {
	ID              string
	Lines           []OrderLine
	DeliveryAddress string
	Status          string
	UserID          int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsCancelled indica si la orden ya no admite mutaciones.
func (o *Order) IsCancelled() bool {
	return o.Status == OrderCancelled
}

// ActiveStatuses estados asignables al crear o actualizar; cancelled sólo se alcanza cancelando.
var ActiveStatuses = []string{OrderPending, OrderProcessing, OrderShipped, OrderDelivered}

// IsActiveStatus true para los estados que se pueden asignar por actualización.
func IsActiveStatus(s string) bool {
	return slices.Contains(ActiveStatuses, s)
}
