package repository

import (
	"context"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// SaleItemFilter filtros de listado. OwnerID restringe a ventas de ese usuario.
type SaleItemFilter struct {
	OwnerID   *int64
	SaleID    *int64
	ProductID *int64
	Limit     int
	Offset    int
}

// SaleItemRepository define el puerto de persistencia para SaleItem.
// GetByID y List devuelven los ítems con Product y Sale expandidos.
type SaleItemRepository interface {
	// Create inserta el ítem y asigna ID, CreatedAt y UpdatedAt.
	Create(ctx context.Context, item *entity.SaleItem) error
	GetByID(ctx context.Context, id int64) (*entity.SaleItem, error)
	GetForUpdate(ctx context.Context, id int64) (*entity.SaleItem, error)
	Update(ctx context.Context, item *entity.SaleItem) error
	Delete(ctx context.Context, id int64) error
	ListBySale(ctx context.Context, saleID int64) ([]*entity.SaleItem, error)
	List(ctx context.Context, filter SaleItemFilter) ([]*entity.SaleItem, error)
}
