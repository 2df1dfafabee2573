package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.SaleItemRepository = (*SaleItemRepo)(nil)

const saleItemColumns = `id, sale_id, product_id, quantity, price, created_at, updated_at`

// saleItemExpanded ítem con producto y venta en una sola consulta.
const saleItemExpanded = `
	SELECT si.id, si.sale_id, si.product_id, si.quantity, si.price, si.created_at, si.updated_at,
	       p.id, p.category_id, p.sku, p.name, p.price, p.stock_level, p.tax_rate, p.created_at, p.updated_at,
	       s.id, s.user_id, s.customer_id, s.total, s.discount, s.tax, s.payment_type, s.status, s.created_at, s.updated_at
	FROM sale_items si
	JOIN products p ON p.id = si.product_id
	JOIN sales s ON s.id = si.sale_id`

// SaleItemRepo ítems de venta sobre PostgreSQL.
type SaleItemRepo struct {
	q Querier
}

// NewSaleItemRepository construye el repositorio de ítems (pool o tx).
func NewSaleItemRepository(q Querier) *SaleItemRepo {
	return &SaleItemRepo{q: q}
}

// Create inserta el ítem y completa ID y timestamps.
func (r *SaleItemRepo) Create(ctx context.Context, item *entity.SaleItem) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO sale_items (sale_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		item.SaleID, item.ProductID, item.Quantity, item.Price,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return saleItemRefError("insert sale item", err)
	}
	return nil
}

// GetByID ítem con producto y venta expandidos.
func (r *SaleItemRepo) GetByID(ctx context.Context, id int64) (*entity.SaleItem, error) {
	it, err := scanExpandedItem(r.q.QueryRow(ctx, saleItemExpanded+` WHERE si.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale item: %w", err)
	}
	return it, nil
}

// GetForUpdate bloquea solo la fila del ítem; venta y producto se bloquean después en orden.
func (r *SaleItemRepo) GetForUpdate(ctx context.Context, id int64) (*entity.SaleItem, error) {
	it, err := scanItem(r.q.QueryRow(ctx, `SELECT `+saleItemColumns+` FROM sale_items WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock sale item: %w", err)
	}
	return it, nil
}

func (r *SaleItemRepo) Update(ctx context.Context, item *entity.SaleItem) error {
	err := r.q.QueryRow(ctx, `
		UPDATE sale_items SET sale_id = $2, product_id = $3, quantity = $4, price = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		item.ID, item.SaleID, item.ProductID, item.Quantity, item.Price,
	).Scan(&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrItemNotFound
		}
		return saleItemRefError("update sale item", err)
	}
	return nil
}

func (r *SaleItemRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM sale_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete sale item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

// ListBySale ítems actuales de la venta, sin expandir (base del recálculo del total).
func (r *SaleItemRepo) ListBySale(ctx context.Context, saleID int64) ([]*entity.SaleItem, error) {
	rows, err := r.q.Query(ctx, `SELECT `+saleItemColumns+` FROM sale_items WHERE sale_id = $1 ORDER BY id`, saleID)
	if err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()

	var out []*entity.SaleItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// List aplica filtros opcionales y pagina en orden id DESC.
func (r *SaleItemRepo) List(ctx context.Context, f repository.SaleItemFilter) ([]*entity.SaleItem, error) {
	query, args := saleItemListQuery(f)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()

	out := make([]*entity.SaleItem, 0)
	for rows.Next() {
		it, err := scanExpandedItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func saleItemListQuery(f repository.SaleItemFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.OwnerID != nil {
		add("s.user_id = $%d", *f.OwnerID)
	}
	if f.SaleID != nil {
		add("si.sale_id = $%d", *f.SaleID)
	}
	if f.ProductID != nil {
		add("si.product_id = $%d", *f.ProductID)
	}

	query := saleItemExpanded
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, f.Limit, f.Offset)
	query += fmt.Sprintf(" ORDER BY si.id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	return query, args
}

func scanItem(row pgx.Row) (*entity.SaleItem, error) {
	var it entity.SaleItem
	if err := row.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.Quantity, &it.Price, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return nil, err
	}
	return &it, nil
}

func scanExpandedItem(row pgx.Row) (*entity.SaleItem, error) {
	var (
		it entity.SaleItem
		p  entity.Product
		s  entity.Sale
	)
	err := row.Scan(
		&it.ID, &it.SaleID, &it.ProductID, &it.Quantity, &it.Price, &it.CreatedAt, &it.UpdatedAt,
		&p.ID, &p.CategoryID, &p.SKU, &p.Name, &p.Price, &p.StockLevel, &p.TaxRate, &p.CreatedAt, &p.UpdatedAt,
		&s.ID, &s.UserID, &s.CustomerID, &s.Total, &s.Discount, &s.Tax, &s.PaymentType, &s.Status, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	it.Product = &p
	it.Sale = &s
	return &it, nil
}
