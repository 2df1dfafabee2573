package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrUserNotFound      = errors.New("usuario no encontrado")
	ErrSaleNotFound      = errors.New("venta no encontrada")
	ErrProductNotFound   = errors.New("producto no encontrado")
	ErrItemNotFound      = errors.New("ítem de venta no encontrado")
	ErrInvalidArgument   = errors.New("entrada inválida")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("cuenta inactiva o suspendida")
	ErrAccessDenied      = errors.New("acceso denegado")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrTransientConflict = errors.New("conflicto transitorio de escritura concurrente")
)

// InsufficientStockError detalla una reserva rechazada. errors.Is(err, ErrInsufficientStock) es true.
type InsufficientStockError struct {
	ProductID int64
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para producto %d: disponible %d, solicitado %d",
		e.ProductID, e.Available, e.Requested)
}

// Is permite comparar contra el sentinel ErrInsufficientStock.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// InvalidArgument envuelve ErrInvalidArgument con el detalle del campo rechazado.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// InternalError oculta un fallo inesperado del almacenamiento detrás de un identificador de correlación.
// La causa queda en los logs; al cliente solo le llega CorrelationID.
type InternalError struct {
	CorrelationID string
	Err           error
}

func (e *InternalError) Error() string {
	return "error interno (correlation_id=" + e.CorrelationID + ")"
}

func (e *InternalError) Unwrap() error { return e.Err }

// IsKnown indica si err pertenece a la taxonomía de errores de dominio que se expone tal cual al caller.
func IsKnown(err error) bool {
	for _, target := range []error{
		ErrInvalidArgument, ErrSaleNotFound, ErrProductNotFound, ErrItemNotFound,
		ErrAccessDenied, ErrInsufficientStock, ErrTransientConflict,
		ErrUserNotFound, ErrUnauthorized, ErrForbidden,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
