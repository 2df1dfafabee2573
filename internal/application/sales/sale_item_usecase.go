package sales

import (
	"context"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/pkg/logger"
)

// SaleItemUseCase coordina crear/actualizar/eliminar ítems de venta. Cada mutación corre en una
// sola transacción que bloquea ítem → venta(s) → producto(s), ajusta el stock vía StockLedger,
// escribe el ítem y recalcula el total vía SaleAggregate. Ante cualquier error se hace Rollback.
type SaleItemUseCase struct {
	txExecutor
	itemRepo repository.SaleItemRepository
	policy   AccessPolicy
}

// NewSaleItemUseCase construye el caso de uso. itemRepo se usa solo para lecturas fuera de tx.
func NewSaleItemUseCase(
	txRunner TxRunner,
	itemRepo repository.SaleItemRepository,
	policy AccessPolicy,
	retry RetryPolicy,
	log *logger.Logger,
) *SaleItemUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &SaleItemUseCase{
		txExecutor: txExecutor{txRunner: txRunner, retry: retry, log: log.Component("sale_items")},
		itemRepo:   itemRepo,
		policy:     policy,
	}
}

// Create agrega una línea a una venta reservando stock y recalculando el total.
func (uc *SaleItemUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateSaleItemRequest) (*dto.SaleItemResponse, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}
	saleID, productID, quantity, price := *in.SaleID, *in.ProductID, *in.Quantity, *in.Price

	var out *entity.SaleItem
	err := uc.execute(ctx, "create", func(
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
		itemRepo repository.SaleItemRepository,
	) error {
		s, err := saleRepo.GetForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		if s == nil {
			return domain.ErrSaleNotFound
		}
		if !uc.policy.CanAccessSale(actor, s) {
			return domain.ErrAccessDenied
		}
		product, err := productRepo.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrProductNotFound
		}

		level, err := NewStockLedger(productRepo).Reserve(ctx, productID, quantity)
		if err != nil {
			return err
		}
		item := &entity.SaleItem{SaleID: saleID, ProductID: productID, Quantity: quantity, Price: price}
		if err := itemRepo.Create(ctx, item); err != nil {
			return err
		}
		updated, err := NewSaleAggregate(saleRepo, itemRepo).Recalculate(ctx, saleID)
		if err != nil {
			return err
		}

		product.StockLevel = level
		item.Product = product
		item.Sale = updated
		out = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Int64("item_id", out.ID).Int64("sale_id", out.SaleID).Int64("product_id", out.ProductID).
		Int64("stock_level", out.Product.StockLevel).Str("sale_total", out.Sale.Total.String()).
		Msg("ítem de venta creado")
	return toSaleItemResponse(out), nil
}

// Update modifica venta, producto, cantidad y/o precio de un ítem. Si cambia la venta, el actor
// debe tener acceso a ambas; si cambia el producto se libera el anterior y se reserva el nuevo.
func (uc *SaleItemUseCase) Update(ctx context.Context, actor entity.Actor, itemID int64, in dto.UpdateSaleItemRequest) (*dto.SaleItemResponse, error) {
	if itemID <= 0 {
		return nil, domain.InvalidArgument("id de ítem inválido")
	}
	if err := validateUpdate(in); err != nil {
		return nil, err
	}

	var out *entity.SaleItem
	err := uc.execute(ctx, "update", func(
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
		itemRepo repository.SaleItemRepository,
	) error {
		item, err := itemRepo.GetForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrItemNotFound
		}

		oldSaleID, oldProductID, oldQty := item.SaleID, item.ProductID, item.Quantity
		newSaleID, newProductID, newQty, newPrice := oldSaleID, oldProductID, oldQty, item.Price
		if in.SaleID != nil {
			newSaleID = *in.SaleID
		}
		if in.ProductID != nil {
			newProductID = *in.ProductID
		}
		if in.Quantity != nil {
			newQty = *in.Quantity
		}
		if in.Price != nil {
			newPrice = *in.Price
		}

		salesByID, err := lockSales(ctx, saleRepo, oldSaleID, newSaleID)
		if err != nil {
			return err
		}
		source := salesByID[oldSaleID]
		if source == nil {
			return domain.ErrSaleNotFound
		}
		if !uc.policy.CanAccessSale(actor, source) {
			return domain.ErrAccessDenied
		}
		if newSaleID != oldSaleID {
			target := salesByID[newSaleID]
			if target == nil {
				return domain.ErrSaleNotFound
			}
			if !uc.policy.CanAccessSale(actor, target) {
				return domain.ErrAccessDenied
			}
		}

		productsByID, err := lockProducts(ctx, productRepo, oldProductID, newProductID)
		if err != nil {
			return err
		}
		if productsByID[newProductID] == nil {
			return domain.ErrProductNotFound
		}

		ledger := NewStockLedger(productRepo)
		if newProductID == oldProductID {
			if _, err := ledger.Adjust(ctx, oldProductID, newQty-oldQty); err != nil {
				return err
			}
		} else {
			if _, err := ledger.Release(ctx, oldProductID, oldQty); err != nil {
				return err
			}
			if _, err := ledger.Reserve(ctx, newProductID, newQty); err != nil {
				return err
			}
		}

		item.SaleID = newSaleID
		item.ProductID = newProductID
		item.Quantity = newQty
		item.Price = newPrice
		if err := itemRepo.Update(ctx, item); err != nil {
			return err
		}

		agg := NewSaleAggregate(saleRepo, itemRepo)
		updated, err := agg.Recalculate(ctx, oldSaleID)
		if err != nil {
			return err
		}
		if newSaleID != oldSaleID {
			if updated, err = agg.Recalculate(ctx, newSaleID); err != nil {
				return err
			}
		}
		product, err := productRepo.GetByID(ctx, newProductID)
		if err != nil {
			return err
		}

		item.Product = product
		item.Sale = updated
		out = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Int64("item_id", out.ID).Int64("sale_id", out.SaleID).Int64("product_id", out.ProductID).
		Int64("quantity", out.Quantity).Str("sale_total", out.Sale.Total.String()).
		Msg("ítem de venta actualizado")
	return toSaleItemResponse(out), nil
}

// Delete elimina un ítem (solo Admin/Manager), libera su stock y recalcula la venta.
func (uc *SaleItemUseCase) Delete(ctx context.Context, actor entity.Actor, itemID int64) (*dto.DeleteSaleItemResponse, error) {
	if itemID <= 0 {
		return nil, domain.InvalidArgument("id de ítem inválido")
	}

	var out *entity.SaleItem
	err := uc.execute(ctx, "delete", func(
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
		itemRepo repository.SaleItemRepository,
	) error {
		item, err := itemRepo.GetForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrItemNotFound
		}
		if !uc.policy.CanDelete(actor) {
			return domain.ErrAccessDenied
		}
		if _, err := lockSales(ctx, saleRepo, item.SaleID); err != nil {
			return err
		}

		level, err := NewStockLedger(productRepo).Release(ctx, item.ProductID, item.Quantity)
		if err != nil {
			return err
		}
		if err := itemRepo.Delete(ctx, item.ID); err != nil {
			return err
		}
		updated, err := NewSaleAggregate(saleRepo, itemRepo).Recalculate(ctx, item.SaleID)
		if err != nil {
			return err
		}
		product, err := productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			return err
		}
		if product != nil {
			product.StockLevel = level
		}

		item.Product = product
		item.Sale = updated
		out = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Int64("item_id", out.ID).Int64("sale_id", out.SaleID).Int64("released", out.Quantity).
		Str("sale_total", out.Sale.Total.String()).
		Msg("ítem de venta eliminado")
	return &dto.DeleteSaleItemResponse{Message: "ítem de venta eliminado", Item: *toSaleItemResponse(out)}, nil
}

// GetByID lectura pura; Cashier solo ve ítems de sus ventas.
func (uc *SaleItemUseCase) GetByID(ctx context.Context, actor entity.Actor, itemID int64) (*dto.SaleItemResponse, error) {
	if itemID <= 0 {
		return nil, domain.InvalidArgument("id de ítem inválido")
	}
	item, err := uc.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, uc.surface("get", err)
	}
	if item == nil {
		return nil, domain.ErrItemNotFound
	}
	if !uc.policy.CanAccessSale(actor, item.Sale) {
		return nil, domain.ErrAccessDenied
	}
	return toSaleItemResponse(item), nil
}

// List lectura pura paginada (id DESC); para Cashier se restringe a sus ventas.
func (uc *SaleItemUseCase) List(ctx context.Context, actor entity.Actor, in dto.SaleItemListRequest) (*dto.SaleItemListResponse, error) {
	in.DefaultPage()
	items, err := uc.itemRepo.List(ctx, repository.SaleItemFilter{
		OwnerID:   uc.policy.OwnerScope(actor),
		SaleID:    in.SaleID,
		ProductID: in.ProductID,
		Limit:     in.Limit,
		Offset:    in.Offset,
	})
	if err != nil {
		return nil, uc.surface("list", err)
	}
	out := make([]dto.SaleItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, *toSaleItemResponse(it))
	}
	return &dto.SaleItemListResponse{
		Items: out,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset},
	}, nil
}

// lockSales bloquea las ventas en orden ascendente de id. Las ausentes quedan nil en el mapa.
func lockSales(ctx context.Context, repo repository.SaleRepository, ids ...int64) (map[int64]*entity.Sale, error) {
	out := make(map[int64]*entity.Sale, len(ids))
	for _, id := range sortedUnique(ids) {
		s, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		out[id] = s
	}
	return out, nil
}

// lockProducts bloquea los productos en orden ascendente de id.
func lockProducts(ctx context.Context, repo repository.ProductRepository, ids ...int64) (map[int64]*entity.Product, error) {
	out := make(map[int64]*entity.Product, len(ids))
	for _, id := range sortedUnique(ids) {
		p, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		out[id] = p
	}
	return out, nil
}

func sortedUnique(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func validateCreate(in dto.CreateSaleItemRequest) error {
	if in.SaleID == nil || in.ProductID == nil || in.Quantity == nil || in.Price == nil {
		return domain.InvalidArgument("sale_id, product_id, quantity y price son requeridos")
	}
	if *in.SaleID <= 0 || *in.ProductID <= 0 {
		return domain.InvalidArgument("ids deben ser positivos")
	}
	if err := validateQuantity(*in.Quantity); err != nil {
		return err
	}
	return validateAmount("price", *in.Price)
}

func validateUpdate(in dto.UpdateSaleItemRequest) error {
	if in.SaleID != nil && *in.SaleID <= 0 {
		return domain.InvalidArgument("sale_id debe ser positivo")
	}
	if in.ProductID != nil && *in.ProductID <= 0 {
		return domain.InvalidArgument("product_id debe ser positivo")
	}
	if in.Quantity != nil {
		if err := validateQuantity(*in.Quantity); err != nil {
			return err
		}
	}
	if in.Price != nil {
		return validateAmount("price", *in.Price)
	}
	return nil
}

// Rango de las columnas monetarias NUMERIC(12, 2) y de quantity INTEGER.
var maxAmount = decimal.New(1, 10)

const maxQuantity = math.MaxInt32

func validateQuantity(q int64) error {
	if q <= 0 {
		return domain.InvalidArgument("quantity debe ser un entero positivo")
	}
	if q > maxQuantity {
		return domain.InvalidArgument("quantity excede el máximo permitido (%d)", maxQuantity)
	}
	return nil
}

// validateAmount exige 0 <= v < 10^10 con a lo sumo dos decimales, lo mismo que guarda la BD.
func validateAmount(field string, v decimal.Decimal) error {
	if v.IsNegative() {
		return domain.InvalidArgument("%s no puede ser negativo", field)
	}
	if !v.Equal(v.Truncate(2)) {
		return domain.InvalidArgument("%s admite como máximo 2 decimales", field)
	}
	if v.GreaterThanOrEqual(maxAmount) {
		return domain.InvalidArgument("%s excede el máximo permitido", field)
	}
	return nil
}
