package sales

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/pkg/logger"
)

// txExecutor corre unidades de trabajo con reintentos y oculta los fallos no clasificados.
type txExecutor struct {
	txRunner TxRunner
	retry    RetryPolicy
	log      *logger.Logger
}

// execute corre fn en una transacción con reintentos ante conflictos transitorios.
func (x txExecutor) execute(ctx context.Context, op string, fn func(
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	itemRepo repository.SaleItemRepository,
) error) error {
	err := x.retry.Do(ctx, func() error {
		return x.txRunner.Run(ctx, fn)
	})
	return x.surface(op, err)
}

// surface deja pasar errores de dominio y de contexto; el resto se registra y se oculta tras un correlation_id.
func (x txExecutor) surface(op string, err error) error {
	if err == nil || domain.IsKnown(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	id := uuid.New().String()
	x.log.Error().Err(err).Str("op", op).Str("correlation_id", id).Msg("fallo inesperado del almacenamiento")
	return &domain.InternalError{CorrelationID: id, Err: err}
}
