package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateSaleRequest body para POST /api/sales. UserID solo lo puede fijar Admin/Manager;
// por defecto la venta es del usuario autenticado.
type CreateSaleRequest struct {
	UserID      *int64           `json:"user_id,omitempty"`
	Discount    *decimal.Decimal `json:"discount,omitempty"`
	Tax         *decimal.Decimal `json:"tax,omitempty"`
	PaymentType string           `json:"payment_type"`
	Status      string           `json:"status"`
}

// UpdateSaleRequest body para PUT /api/sales/:id. Solo se aplican los campos presentes.
type UpdateSaleRequest struct {
	Discount    *decimal.Decimal `json:"discount,omitempty"`
	Tax         *decimal.Decimal `json:"tax,omitempty"`
	PaymentType *string          `json:"payment_type,omitempty"`
	Status      *string          `json:"status,omitempty"`
}

// SaleListRequest filtros de GET /api/sales.
type SaleListRequest struct {
	Status *string
	PageRequest
}

// SaleResponse salida de una venta. Items solo viaja en el detalle.
type SaleResponse struct {
	ID          int64              `json:"id"`
	UserID      int64              `json:"user_id"`
	CustomerID  *int64             `json:"customer_id,omitempty"`
	Total       decimal.Decimal    `json:"total"`
	Discount    decimal.Decimal    `json:"discount"`
	Tax         decimal.Decimal    `json:"tax"`
	PaymentType string             `json:"payment_type"`
	Status      string             `json:"status"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	Items       []SaleItemResponse `json:"items,omitempty"`
}

// SaleListResponse lista paginada de ventas.
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
