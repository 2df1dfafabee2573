package sales

import (
	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain/entity"
)

func toSaleItemResponse(it *entity.SaleItem) *dto.SaleItemResponse {
	if it == nil {
		return nil
	}
	out := &dto.SaleItemResponse{
		ID:        it.ID,
		SaleID:    it.SaleID,
		ProductID: it.ProductID,
		Quantity:  it.Quantity,
		Price:     it.Price,
		Subtotal:  it.Subtotal(),
		CreatedAt: it.CreatedAt,
		UpdatedAt: it.UpdatedAt,
	}
	if p := it.Product; p != nil {
		out.Product = &dto.ProductSummary{
			ID:         p.ID,
			SKU:        p.SKU,
			Name:       p.Name,
			Price:      p.Price,
			StockLevel: p.StockLevel,
		}
	}
	if s := it.Sale; s != nil {
		out.Sale = &dto.SaleSummary{
			ID:         s.ID,
			UserID:     s.UserID,
			CustomerID: s.CustomerID,
			Total:      s.Total,
			Discount:   s.Discount,
			Tax:        s.Tax,
			Status:     s.Status,
		}
	}
	return out
}

func toSaleResponse(s *entity.Sale, items []*entity.SaleItem) *dto.SaleResponse {
	out := &dto.SaleResponse{
		ID:          s.ID,
		UserID:      s.UserID,
		CustomerID:  s.CustomerID,
		Total:       s.Total,
		Discount:    s.Discount,
		Tax:         s.Tax,
		PaymentType: s.PaymentType,
		Status:      s.Status,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
	for _, it := range items {
		out.Items = append(out.Items, *toSaleItemResponse(it))
	}
	return out
}
