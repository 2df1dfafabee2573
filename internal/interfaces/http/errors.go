package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain"
)

// writeError traduce errores de dominio a status HTTP + dto.ErrorResponse.
// Los errores no clasificados nunca exponen su mensaje: solo un correlation_id.
func writeError(c *fiber.Ctx, err error) error {
	var (
		stockErr    *domain.InsufficientStockError
		internalErr *domain.InternalError
	)
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return respond(c, fiber.StatusBadRequest, "VALIDATION", err.Error())
	case errors.Is(err, domain.ErrSaleNotFound):
		return respond(c, fiber.StatusNotFound, "SALE_NOT_FOUND", "venta no encontrada")
	case errors.Is(err, domain.ErrProductNotFound):
		return respond(c, fiber.StatusNotFound, "PRODUCT_NOT_FOUND", "producto no encontrado")
	case errors.Is(err, domain.ErrItemNotFound):
		return respond(c, fiber.StatusNotFound, "ITEM_NOT_FOUND", "ítem de venta no encontrado")
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrUnauthorized):
		return respond(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "credenciales inválidas")
	case errors.Is(err, domain.ErrForbidden):
		return respond(c, fiber.StatusForbidden, "FORBIDDEN", "cuenta inactiva o suspendida")
	case errors.Is(err, domain.ErrAccessDenied):
		return respond(c, fiber.StatusForbidden, "FORBIDDEN", "acceso denegado")
	case errors.As(err, &stockErr):
		return respond(c, fiber.StatusConflict, "INSUFFICIENT_STOCK", stockErr.Error())
	case errors.Is(err, domain.ErrTransientConflict):
		c.Set(fiber.HeaderRetryAfter, "1")
		return respond(c, fiber.StatusServiceUnavailable, "CONFLICT_RETRY", "conflicto de concurrencia, reintente")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return respond(c, fiber.StatusRequestTimeout, "TIMEOUT", "la operación fue cancelada")
	case errors.As(err, &internalErr):
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Code: "INTERNAL", Message: "error interno", CorrelationID: internalErr.CorrelationID,
		})
	}
	id := uuid.New().String()
	log.Error().Err(err).Str("correlation_id", id).Str("path", c.Path()).Msg("error no clasificado")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Code: "INTERNAL", Message: "error interno", CorrelationID: id,
	})
}

func respond(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: message})
}
