package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/pos-api/internal/domain"
)

// Códigos SQLSTATE relevantes.
const (
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeNumericOutOfRange    = "22003"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isTransientConflict serialización fallida, deadlock o lock_timeout: la tx completa puede reintentarse.
func isTransientConflict(err error) bool {
	switch pgCode(err) {
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
		return true
	}
	return false
}

// foreignKeyTarget devuelve la constraint violada si err es 23503.
func foreignKeyTarget(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// classify marca los conflictos transitorios con domain.ErrTransientConflict conservando la causa.
// Un desborde numérico (por ejemplo el total de una venta sobre NUMERIC(14, 2)) es entrada inválida.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case isTransientConflict(err):
		return fmt.Errorf("%w: %w", domain.ErrTransientConflict, err)
	case pgCode(err) == codeNumericOutOfRange:
		return domain.InvalidArgument("valor numérico fuera del rango admitido")
	}
	return err
}

// saleItemRefError traduce la violación de FK de sale_items al error de dominio correspondiente.
func saleItemRefError(op string, err error) error {
	if constraint, ok := foreignKeyTarget(err); ok {
		switch constraint {
		case "sale_items_sale_id_fkey":
			return fmt.Errorf("%s: %w", op, domain.ErrSaleNotFound)
		case "sale_items_product_id_fkey":
			return fmt.Errorf("%s: %w", op, domain.ErrProductNotFound)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// saleRefError traduce la violación de FK del dueño de la venta a entrada inválida.
func saleRefError(op string, err error) error {
	if constraint, ok := foreignKeyTarget(err); ok && constraint == "sales_user_id_fkey" {
		return fmt.Errorf("%s: %w", op, domain.InvalidArgument("user_id no existe"))
	}
	return fmt.Errorf("%s: %w", op, err)
}
