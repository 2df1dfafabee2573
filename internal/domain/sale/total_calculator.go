package sale

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// Subtotal suma Quantity*Price de todos los ítems (el orden es irrelevante).
func Subtotal(items []*entity.SaleItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Subtotal())
	}
	return sum
}

// CalculateTotal implementa Total = Σ(cantidad*precio) + tax - discount (servicio de dominio).
// No se recorta a cero: un descuento mayor que subtotal+tax produce un total negativo.
func CalculateTotal(items []*entity.SaleItem, tax, discount decimal.Decimal) decimal.Decimal {
	return Subtotal(items).Add(tax).Sub(discount)
}
