package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleItem línea de una venta. Price es una foto del precio unitario al momento de vender,
// independiente de Product.Price. Su existencia implica una reserva de Quantity unidades
// sobre ProductID.
type SaleItem struct {
	ID        int64
	SaleID    int64
	ProductID int64
	Quantity  int64
	Price     decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time

	// Expandidos para el caller; nil cuando el repositorio no los carga.
	Product *Product
	Sale    *Sale
}

// Subtotal devuelve Quantity * Price.
func (i *SaleItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(i.Quantity))
}
