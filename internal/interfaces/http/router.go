package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-api/internal/application/auth"
	"github.com/jhoicas/pos-api/internal/application/sales"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	SaleUC     *sales.SaleUseCase
	SaleItemUC *sales.SaleItemUseCase
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas: Bearer Token de un usuario activo con rol conocido.
	// Las reglas por rol y propiedad las aplica la política de acceso de cada caso de uso.
	protected := api.Group("/",
		AuthMiddleware(deps.JWTSecret),
		RequireRole(),
		RequireActiveUser(deps.AuthUC),
	)
	protected.Get("/auth/me", authHandler.Me)

	salesGroup := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.SaleUC)
	salesGroup.Post("/", saleHandler.Create)
	salesGroup.Get("/", saleHandler.List)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Put("/:id", saleHandler.Update)
	salesGroup.Delete("/:id", saleHandler.Cancel)

	items := protected.Group("/sale-items")
	itemHandler := NewSaleItemHandler(deps.SaleItemUC)
	items.Post("/", itemHandler.Create)
	items.Get("/", itemHandler.List)
	items.Get("/:id", itemHandler.GetByID)
	items.Put("/:id", itemHandler.Update)
	items.Delete("/:id", itemHandler.Delete)
}
