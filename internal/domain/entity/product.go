package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo. Stock nunca es negativo.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	CategoryID  *string // nil si no tiene categoría o la categoría fue eliminada
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
