package sales

import (
	"context"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// StockLedger única vía de escritura de Product.StockLevel. Opera con un ProductRepository
// atado a la transacción del caller: cada operación bloquea la fila (SELECT FOR UPDATE),
// decide con el valor leído bajo el bloqueo y escribe en la misma tx.
type StockLedger struct {
	products repository.ProductRepository
}

// NewStockLedger construye el libro sobre un repositorio de productos de la tx en curso.
func NewStockLedger(products repository.ProductRepository) *StockLedger {
	return &StockLedger{products: products}
}

// Reserve descuenta quantity unidades. ErrInsufficientStock si StockLevel < quantity.
func (l *StockLedger) Reserve(ctx context.Context, productID, quantity int64) (int64, error) {
	if quantity <= 0 {
		return 0, domain.InvalidArgument("cantidad a reservar debe ser positiva")
	}
	product, err := l.products.GetForUpdate(ctx, productID)
	if err != nil {
		return 0, err
	}
	if product == nil {
		return 0, domain.ErrProductNotFound
	}
	if product.StockLevel < quantity {
		return 0, &domain.InsufficientStockError{
			ProductID: productID,
			Available: product.StockLevel,
			Requested: quantity,
		}
	}
	newLevel := product.StockLevel - quantity
	if err := l.products.UpdateStockLevel(ctx, productID, newLevel); err != nil {
		return 0, err
	}
	return newLevel, nil
}

// Release devuelve quantity unidades al stock sin condición.
func (l *StockLedger) Release(ctx context.Context, productID, quantity int64) (int64, error) {
	if quantity < 0 {
		return 0, domain.InvalidArgument("cantidad a liberar no puede ser negativa")
	}
	product, err := l.products.GetForUpdate(ctx, productID)
	if err != nil {
		return 0, err
	}
	if product == nil {
		return 0, domain.ErrProductNotFound
	}
	newLevel := product.StockLevel + quantity
	if err := l.products.UpdateStockLevel(ctx, productID, newLevel); err != nil {
		return 0, err
	}
	return newLevel, nil
}

// Adjust aplica un cambio firmado: delta > 0 reserva delta unidades más, delta < 0 libera -delta.
// Con delta = 0 no escribe y devuelve el nivel actual.
func (l *StockLedger) Adjust(ctx context.Context, productID, delta int64) (int64, error) {
	switch {
	case delta > 0:
		return l.Reserve(ctx, productID, delta)
	case delta < 0:
		return l.Release(ctx, productID, -delta)
	}
	product, err := l.products.GetForUpdate(ctx, productID)
	if err != nil {
		return 0, err
	}
	if product == nil {
		return 0, domain.ErrProductNotFound
	}
	return product.StockLevel, nil
}
