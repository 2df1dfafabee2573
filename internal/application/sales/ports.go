package sales

import (
	"context"

	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn retorna error se hace Rollback; si no, Commit. Los conflictos de escritura concurrente
// detectados por el almacenamiento se devuelven envueltos en domain.ErrTransientConflict.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
		itemRepo repository.SaleItemRepository,
	) error) error
}

// AccessPolicy predicados de rol y propiedad que consulta el coordinador antes de mutar.
// Lo implementa access.RolePolicy.
type AccessPolicy interface {
	CanAccessSale(actor entity.Actor, sale *entity.Sale) bool
	CanDelete(actor entity.Actor) bool
	OwnerScope(actor entity.Actor) *int64
}
