package sale_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/sale"
)

func item(qty int64, price string) *entity.SaleItem {
	return &entity.SaleItem{Quantity: qty, Price: decimal.RequireFromString(price)}
}

func TestCalculateTotal_SumaLineasMasImpuestoMenosDescuento(t *testing.T) {
	items := []*entity.SaleItem{item(5, "2.00"), item(1, "1500.00"), item(3, "0.33")}

	total := sale.CalculateTotal(items, decimal.RequireFromString("150"), decimal.RequireFromString("10.5"))

	// 10.00 + 1500.00 + 0.99 + 150 - 10.5
	assert.True(t, decimal.RequireFromString("1650.49").Equal(total), "total obtenido: %s", total)
}

func TestCalculateTotal_SinItems(t *testing.T) {
	total := sale.CalculateTotal(nil, decimal.NewFromInt(7), decimal.NewFromInt(2))
	assert.True(t, decimal.NewFromInt(5).Equal(total))
}

// El descuento puede superar subtotal + impuesto; el total queda negativo sin recorte.
func TestCalculateTotal_PermiteTotalNegativo(t *testing.T) {
	items := []*entity.SaleItem{item(1, "10")}

	total := sale.CalculateTotal(items, decimal.NewFromInt(1), decimal.NewFromInt(20))

	assert.True(t, decimal.NewFromInt(-9).Equal(total))
}

func TestSubtotal_IndependienteDelOrden(t *testing.T) {
	a := []*entity.SaleItem{item(2, "3.10"), item(7, "0.05")}
	b := []*entity.SaleItem{a[1], a[0]}
	assert.True(t, sale.Subtotal(a).Equal(sale.Subtotal(b)))
}
