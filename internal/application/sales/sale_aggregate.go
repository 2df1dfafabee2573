package sales

import (
	"context"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/internal/domain/sale"
)

// SaleAggregate recalcula y persiste el total derivado de una venta dentro de la tx del caller.
type SaleAggregate struct {
	sales repository.SaleRepository
	items repository.SaleItemRepository
}

// NewSaleAggregate construye el agregado sobre repositorios de la tx en curso.
func NewSaleAggregate(sales repository.SaleRepository, items repository.SaleItemRepository) *SaleAggregate {
	return &SaleAggregate{sales: sales, items: items}
}

// Recalculate carga los ítems actuales de la venta, calcula subtotal + tax - discount y lo escribe.
// Debe llamarse después de modificar los ítems y antes del commit; si falla, el caller aborta la tx.
func (a *SaleAggregate) Recalculate(ctx context.Context, saleID int64) (*entity.Sale, error) {
	s, err := a.sales.GetForUpdate(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrSaleNotFound
	}
	items, err := a.items.ListBySale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	s.Total = sale.CalculateTotal(items, s.Tax, s.Discount)
	if err := a.sales.UpdateTotal(ctx, saleID, s.Total); err != nil {
		return nil, err
	}
	return s, nil
}
