package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una venta.
const (
	SaleStatusPending   = "pending"
	SaleStatusCompleted = "completed"
	SaleStatusCancelled = "cancelled"
)

// Sale cabecera de una venta. Total es derivado: Σ(cantidad*precio) + Tax - Discount,
// recalculado en la misma transacción que modifica sus ítems.
type Sale struct {
	ID          int64
	UserID      int64  // cajero/usuario dueño de la venta
	CustomerID  *int64
	Total       decimal.Decimal
	Discount    decimal.Decimal // monto absoluto
	Tax         decimal.Decimal // monto absoluto
	PaymentType string
	Status      string // pending, completed, cancelled
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidSaleStatus indica si status es uno de los estados conocidos.
func ValidSaleStatus(status string) bool {
	switch status {
	case SaleStatusPending, SaleStatusCompleted, SaleStatusCancelled:
		return true
	}
	return false
}
