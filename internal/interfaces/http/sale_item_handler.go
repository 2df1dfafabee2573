package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/sales"
)

// SaleItemHandler maneja las peticiones HTTP para ítems de venta (protegido).
type SaleItemHandler struct {
	uc *sales.SaleItemUseCase
}

// NewSaleItemHandler construye el handler.
func NewSaleItemHandler(uc *sales.SaleItemUseCase) *SaleItemHandler {
	return &SaleItemHandler{uc: uc}
}

// Create godoc
// @Summary      Agregar ítem a una venta
// @Description  Reserva stock del producto y recalcula el total de la venta en una sola transacción.
// @Tags         sale-items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleItemRequest  true  "sale_id, product_id, quantity, price"
// @Success      201   {object}  dto.SaleItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/sale-items [post]
func (h *SaleItemHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleItemRequest
	if err := c.BodyParser(&in); err != nil {
		return respond(c, fiber.StatusBadRequest, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.uc.Create(c.UserContext(), GetActor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener ítem de venta por ID
// @Tags         sale-items
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del ítem"
// @Success      200  {object}  dto.SaleItemResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sale-items/{id} [get]
func (h *SaleItemHandler) GetByID(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return respond(c, fiber.StatusBadRequest, "INVALID_ID", "id debe ser un entero positivo")
	}
	out, err := h.uc.GetByID(c.UserContext(), GetActor(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar ítems de venta
// @Description  Orden id DESC. Un Cashier solo ve ítems de sus propias ventas.
// @Tags         sale-items
// @Security     Bearer
// @Produce      json
// @Param        sale_id     query  int  false  "Filtrar por venta"
// @Param        product_id  query  int  false  "Filtrar por producto"
// @Param        limit       query  int  false  "Máximo de resultados (1-100, default 20)"
// @Param        offset      query  int  false  "Desplazamiento"
// @Success      200  {object}  dto.SaleItemListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/sale-items [get]
func (h *SaleItemHandler) List(c *fiber.Ctx) error {
	var in dto.SaleItemListRequest
	var ok bool
	if in.SaleID, ok = optionalInt(c, "sale_id"); !ok {
		return respond(c, fiber.StatusBadRequest, "VALIDATION", "sale_id debe ser un entero")
	}
	if in.ProductID, ok = optionalInt(c, "product_id"); !ok {
		return respond(c, fiber.StatusBadRequest, "VALIDATION", "product_id debe ser un entero")
	}
	in.Limit = c.QueryInt("limit", dto.DefaultLimit)
	in.Offset = c.QueryInt("offset", 0)

	out, err := h.uc.List(c.UserContext(), GetActor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar ítem de venta
// @Description  Ajusta stock por la diferencia de cantidad (o libera/reserva si cambia el producto) y recalcula las ventas afectadas.
// @Tags         sale-items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                        true  "ID del ítem"
// @Param        body  body  dto.UpdateSaleItemRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.SaleItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sale-items/{id} [put]
func (h *SaleItemHandler) Update(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return respond(c, fiber.StatusBadRequest, "INVALID_ID", "id debe ser un entero positivo")
	}
	var in dto.UpdateSaleItemRequest
	if err := c.BodyParser(&in); err != nil {
		return respond(c, fiber.StatusBadRequest, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.uc.Update(c.UserContext(), GetActor(c), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar ítem de venta
// @Description  Solo Admin y Manager. Libera el stock reservado y recalcula la venta.
// @Tags         sale-items
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del ítem"
// @Success      200  {object}  dto.DeleteSaleItemResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sale-items/{id} [delete]
func (h *SaleItemHandler) Delete(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return respond(c, fiber.StatusBadRequest, "INVALID_ID", "id debe ser un entero positivo")
	}
	out, err := h.uc.Delete(c.UserContext(), GetActor(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func pathID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	return id, err == nil && id > 0
}

// optionalInt nil si el parámetro no viene; false si viene y no es entero.
func optionalInt(c *fiber.Ctx, key string) (*int64, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, false
	}
	return &v, true
}
