package sales

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/pkg/logger"
)

const (
	defaultPaymentType = "cash"
	maxPaymentTypeLen  = 32
)

// SaleUseCase abre, consulta, edita y cancela cabeceras de venta. Editar tax o discount
// recalcula el total en la misma transacción; cancelar no toca ítems ni stock.
type SaleUseCase struct {
	txExecutor
	saleRepo repository.SaleRepository
	itemRepo repository.SaleItemRepository
	policy   AccessPolicy
}

// NewSaleUseCase construye el caso de uso. saleRepo e itemRepo se usan solo para lecturas fuera de tx.
func NewSaleUseCase(
	txRunner TxRunner,
	saleRepo repository.SaleRepository,
	itemRepo repository.SaleItemRepository,
	policy AccessPolicy,
	retry RetryPolicy,
	log *logger.Logger,
) *SaleUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &SaleUseCase{
		txExecutor: txExecutor{txRunner: txRunner, retry: retry, log: log.Component("sales")},
		saleRepo:   saleRepo,
		itemRepo:   itemRepo,
		policy:     policy,
	}
}

// Create abre una venta sin ítems; su total queda en tax - discount.
func (uc *SaleUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	s := &entity.Sale{
		UserID:      actor.ID,
		Discount:    decimal.Zero,
		Tax:         decimal.Zero,
		PaymentType: strings.TrimSpace(in.PaymentType),
		Status:      in.Status,
	}
	if in.UserID != nil {
		s.UserID = *in.UserID
	}
	if in.Discount != nil {
		s.Discount = *in.Discount
	}
	if in.Tax != nil {
		s.Tax = *in.Tax
	}
	if s.PaymentType == "" {
		s.PaymentType = defaultPaymentType
	}
	if s.Status == "" {
		s.Status = entity.SaleStatusPending
	}
	if err := validateSale(s); err != nil {
		return nil, err
	}
	if s.Status == entity.SaleStatusCancelled {
		return nil, domain.InvalidArgument("una venta nueva no puede estar cancelada")
	}
	if !uc.policy.CanAccessSale(actor, s) {
		return nil, domain.ErrAccessDenied
	}

	var out *entity.Sale
	err := uc.execute(ctx, "create", func(
		_ repository.ProductRepository,
		saleRepo repository.SaleRepository,
		itemRepo repository.SaleItemRepository,
	) error {
		if err := saleRepo.Create(ctx, s); err != nil {
			return err
		}
		updated, err := NewSaleAggregate(saleRepo, itemRepo).Recalculate(ctx, s.ID)
		if err != nil {
			return err
		}
		out = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Int64("sale_id", out.ID).Int64("user_id", out.UserID).Str("sale_total", out.Total.String()).
		Msg("venta creada")
	return toSaleResponse(out, nil), nil
}

// GetByID devuelve la venta con sus ítems; Cashier solo ve las propias.
func (uc *SaleUseCase) GetByID(ctx context.Context, actor entity.Actor, saleID int64) (*dto.SaleResponse, error) {
	if saleID <= 0 {
		return nil, domain.InvalidArgument("id de venta inválido")
	}
	s, err := uc.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, uc.surface("get", err)
	}
	if s == nil {
		return nil, domain.ErrSaleNotFound
	}
	if !uc.policy.CanAccessSale(actor, s) {
		return nil, domain.ErrAccessDenied
	}
	items, err := uc.itemRepo.ListBySale(ctx, saleID)
	if err != nil {
		return nil, uc.surface("get", err)
	}
	return toSaleResponse(s, items), nil
}

// List pagina en orden id DESC; para Cashier se restringe a sus ventas.
func (uc *SaleUseCase) List(ctx context.Context, actor entity.Actor, in dto.SaleListRequest) (*dto.SaleListResponse, error) {
	if in.Status != nil && !entity.ValidSaleStatus(*in.Status) {
		return nil, domain.InvalidArgument("status desconocido: %q", *in.Status)
	}
	in.DefaultPage()
	list, err := uc.saleRepo.List(ctx, repository.SaleFilter{
		OwnerID: uc.policy.OwnerScope(actor),
		Status:  in.Status,
		Limit:   in.Limit,
		Offset:  in.Offset,
	})
	if err != nil {
		return nil, uc.surface("list", err)
	}
	out := make([]dto.SaleResponse, 0, len(list))
	for _, s := range list {
		out = append(out, *toSaleResponse(s, nil))
	}
	return &dto.SaleListResponse{
		Items: out,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset},
	}, nil
}

// Update aplica tax, discount, payment_type y status y recalcula el total.
// Pasar a cancelled exige el mismo permiso que Cancel.
func (uc *SaleUseCase) Update(ctx context.Context, actor entity.Actor, saleID int64, in dto.UpdateSaleRequest) (*dto.SaleResponse, error) {
	if saleID <= 0 {
		return nil, domain.InvalidArgument("id de venta inválido")
	}

	var out *entity.Sale
	err := uc.execute(ctx, "update", func(
		_ repository.ProductRepository,
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

		prevStatus := s.Status
		if in.Discount != nil {
			s.Discount = *in.Discount
		}
		if in.Tax != nil {
			s.Tax = *in.Tax
		}
		if in.PaymentType != nil {
			s.PaymentType = strings.TrimSpace(*in.PaymentType)
		}
		if in.Status != nil {
			s.Status = *in.Status
		}
		if err := validateSale(s); err != nil {
			return err
		}
		if s.Status == entity.SaleStatusCancelled && prevStatus != entity.SaleStatusCancelled && !uc.policy.CanDelete(actor) {
			return domain.ErrAccessDenied
		}

		if err := saleRepo.Update(ctx, s); err != nil {
			return err
		}
		updated, err := NewSaleAggregate(saleRepo, itemRepo).Recalculate(ctx, saleID)
		if err != nil {
			return err
		}
		out = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Int64("sale_id", out.ID).Str("status", out.Status).Str("sale_total", out.Total.String()).
		Msg("venta actualizada")
	return toSaleResponse(out, nil), nil
}

// Cancel marca la venta como cancelled (borrado lógico). Solo Admin y Manager.
// Los ítems y sus reservas de stock se conservan; cancelar dos veces no es error.
func (uc *SaleUseCase) Cancel(ctx context.Context, actor entity.Actor, saleID int64) (*dto.SaleResponse, error) {
	if saleID <= 0 {
		return nil, domain.InvalidArgument("id de venta inválido")
	}

	var out *entity.Sale
	err := uc.execute(ctx, "cancel", func(
		_ repository.ProductRepository,
		saleRepo repository.SaleRepository,
		_ repository.SaleItemRepository,
	) error {
		s, err := saleRepo.GetForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		if s == nil {
			return domain.ErrSaleNotFound
		}
		if !uc.policy.CanDelete(actor) {
			return domain.ErrAccessDenied
		}
		if s.Status != entity.SaleStatusCancelled {
			s.Status = entity.SaleStatusCancelled
			if err := saleRepo.Update(ctx, s); err != nil {
				return err
			}
		}
		out = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Int64("sale_id", out.ID).Msg("venta cancelada")
	return toSaleResponse(out, nil), nil
}

func validateSale(s *entity.Sale) error {
	if s.UserID <= 0 {
		return domain.InvalidArgument("user_id debe ser positivo")
	}
	if err := validateAmount("discount", s.Discount); err != nil {
		return err
	}
	if err := validateAmount("tax", s.Tax); err != nil {
		return err
	}
	if s.PaymentType == "" {
		return domain.InvalidArgument("payment_type no puede estar vacío")
	}
	if utf8.RuneCountInString(s.PaymentType) > maxPaymentTypeLen {
		return domain.InvalidArgument("payment_type admite como máximo %d caracteres", maxPaymentTypeLen)
	}
	if !entity.ValidSaleStatus(s.Status) {
		return domain.InvalidArgument("status desconocido: %q", s.Status)
	}
	return nil
}
