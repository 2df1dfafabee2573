package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateSaleItemRequest body para POST /api/sale-items. Todos los campos son obligatorios.
type CreateSaleItemRequest struct {
	SaleID    *int64           `json:"sale_id"`
	ProductID *int64           `json:"product_id"`
	Quantity  *int64           `json:"quantity"`
	Price     *decimal.Decimal `json:"price"`
}

// UpdateSaleItemRequest body para PUT /api/sale-items/:id. Solo se aplican los campos presentes.
type UpdateSaleItemRequest struct {
	SaleID    *int64           `json:"sale_id,omitempty"`
	ProductID *int64           `json:"product_id,omitempty"`
	Quantity  *int64           `json:"quantity,omitempty"`
	Price     *decimal.Decimal `json:"price,omitempty"`
}

// SaleItemListRequest filtros de GET /api/sale-items.
type SaleItemListRequest struct {
	SaleID    *int64
	ProductID *int64
	PageRequest
}

// ProductSummary producto expandido dentro de un ítem.
type ProductSummary struct {
	ID         int64           `json:"id"`
	SKU        string          `json:"sku"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	StockLevel int64           `json:"stock_level"`
}

// SaleSummary venta expandida dentro de un ítem.
type SaleSummary struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"user_id"`
	CustomerID *int64          `json:"customer_id,omitempty"`
	Total      decimal.Decimal `json:"total"`
	Discount   decimal.Decimal `json:"discount"`
	Tax        decimal.Decimal `json:"tax"`
	Status     string          `json:"status"`
}

// SaleItemResponse salida de un ítem de venta con producto y venta expandidos.
type SaleItemResponse struct {
	ID        int64           `json:"id"`
	SaleID    int64           `json:"sale_id"`
	ProductID int64           `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Product   *ProductSummary `json:"product,omitempty"`
	Sale      *SaleSummary    `json:"sale,omitempty"`
}

// SaleItemListResponse lista paginada de ítems.
type SaleItemListResponse struct {
	Items []SaleItemResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// DeleteSaleItemResponse confirmación de borrado con el ítem eliminado.
type DeleteSaleItemResponse struct {
	Message string           `json:"message"`
	Item    SaleItemResponse `json:"item"`
}
