package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-api/internal/application/dto"
)

// activeUserChecker contrato mínimo para verificar el estado del usuario del token.
// Lo implementa *auth.AuthUseCase.
type activeUserChecker interface {
	IsActive(ctx context.Context, userID int64) (bool, error)
}

// RequireActiveUser rechaza tokens de usuarios eliminados o desactivados después del login.
// Debe usarse DESPUÉS de AuthMiddleware.
//
// Comportamiento:
//   - 403 Forbidden → usuario inexistente o inactivo.
//   - 503 Service Unavailable → fallo de infraestructura al consultar el almacenamiento.
func RequireActiveUser(checker activeUserChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := GetUserID(c)
		if userID <= 0 {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "user_id no encontrado en el token",
			})
		}

		active, err := checker.IsActive(c.UserContext(), userID)
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "USER_CHECK_FAILED",
				Message: "no se pudo verificar el usuario, intente más tarde",
			})
		}
		if !active {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "FORBIDDEN",
				Message: "cuenta inactiva o suspendida",
			})
		}
		return c.Next()
	}
}
