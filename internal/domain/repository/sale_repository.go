package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// SaleFilter filtros de listado de ventas. OwnerID restringe a ventas de ese usuario.
type SaleFilter struct {
	OwnerID *int64
	Status  *string
	Limit   int
	Offset  int
}

// SaleRepository define el puerto de persistencia para la cabecera de Sale.
type SaleRepository interface {
	// Create inserta la venta y asigna ID, CreatedAt y UpdatedAt. El total lo fija luego el recálculo.
	Create(ctx context.Context, s *entity.Sale) error
	GetByID(ctx context.Context, id int64) (*entity.Sale, error)
	GetForUpdate(ctx context.Context, id int64) (*entity.Sale, error)
	// Update persiste discount, tax, payment_type y status. No toca el total.
	Update(ctx context.Context, s *entity.Sale) error
	// UpdateTotal persiste el total derivado (lo usa solo el recálculo del agregado).
	UpdateTotal(ctx context.Context, id int64, total decimal.Decimal) error
	List(ctx context.Context, filter SaleFilter) ([]*entity.Sale, error)
}
