package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un artículo del catálogo del punto de venta.
// StockLevel es la existencia disponible en unidades; solo cambia vía el libro de stock
// (reservas/liberaciones ligadas a ítems de venta) y nunca es negativo.
type Product struct {
	ID         int64
	CategoryID *int64
	SKU        string
	Name       string
	Price      decimal.Decimal // precio de lista actual
	StockLevel int64
	TaxRate    decimal.Decimal
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
