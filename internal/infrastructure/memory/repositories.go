package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository  = (*ProductRepo)(nil)
	_ repository.SaleRepository     = (*SaleRepo)(nil)
	_ repository.SaleItemRepository = (*SaleItemRepo)(nil)
	_ repository.UserRepository     = (*UserRepo)(nil)
)

// ProductRepo productos en memoria.
type ProductRepo struct{ v *view }

func (r *ProductRepo) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	var out *entity.Product
	r.v.read(func(st *state) {
		if p, ok := st.products[id]; ok {
			out = &p
		}
	})
	return out, nil
}

// GetForUpdate equivale a GetByID: el aislamiento lo da el mutex de Run.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

// UpdateStockLevel rechaza niveles negativos como lo haría el CHECK de la tabla.
func (r *ProductRepo) UpdateStockLevel(_ context.Context, id int64, stockLevel int64) error {
	return r.v.write(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrProductNotFound
		}
		if stockLevel < 0 {
			return fmt.Errorf("update stock level: producto %d quedaría en %d", id, stockLevel)
		}
		p.StockLevel = stockLevel
		p.UpdatedAt = r.v.now()
		st.products[id] = p
		return nil
	})
}

// SaleRepo ventas en memoria.
type SaleRepo struct{ v *view }

func (r *SaleRepo) GetByID(_ context.Context, id int64) (*entity.Sale, error) {
	var out *entity.Sale
	r.v.read(func(st *state) {
		if s, ok := st.sales[id]; ok {
			out = &s
		}
	})
	return out, nil
}

func (r *SaleRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Sale, error) {
	return r.GetByID(ctx, id)
}

// Create valida el dueño como la FK sales.user_id y asigna ID.
func (r *SaleRepo) Create(_ context.Context, s *entity.Sale) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.users[s.UserID]; !ok {
			return domain.InvalidArgument("user_id %d no existe", s.UserID)
		}
		now := r.v.now()
		st.nextSaleID++
		s.ID = st.nextSaleID
		s.CreatedAt = now
		s.UpdatedAt = now
		st.sales[s.ID] = *s
		return nil
	})
}

func (r *SaleRepo) Update(_ context.Context, s *entity.Sale) error {
	return r.v.write(func(st *state) error {
		cur, ok := st.sales[s.ID]
		if !ok {
			return domain.ErrSaleNotFound
		}
		cur.Discount = s.Discount
		cur.Tax = s.Tax
		cur.PaymentType = s.PaymentType
		cur.Status = s.Status
		cur.UpdatedAt = r.v.now()
		st.sales[s.ID] = cur
		s.UpdatedAt = cur.UpdatedAt
		return nil
	})
}

// List filtra por dueño y estado y pagina en orden id DESC.
func (r *SaleRepo) List(_ context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	var out []*entity.Sale
	r.v.read(func(st *state) {
		for _, s := range st.sales {
			if f.OwnerID != nil && s.UserID != *f.OwnerID {
				continue
			}
			if f.Status != nil && s.Status != *f.Status {
				continue
			}
			out = append(out, &s)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if f.Offset >= len(out) {
		return []*entity.Sale{}, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *SaleRepo) UpdateTotal(_ context.Context, id int64, total decimal.Decimal) error {
	return r.v.write(func(st *state) error {
		s, ok := st.sales[id]
		if !ok {
			return domain.ErrSaleNotFound
		}
		s.Total = total
		s.UpdatedAt = r.v.now()
		st.sales[id] = s
		return nil
	})
}

// SaleItemRepo ítems de venta en memoria. Valida las claves foráneas como la BD.
type SaleItemRepo struct{ v *view }

func (r *SaleItemRepo) Create(_ context.Context, item *entity.SaleItem) error {
	return r.v.write(func(st *state) error {
		if err := checkRefs(st, item); err != nil {
			return err
		}
		now := r.v.now()
		st.nextItemID++
		item.ID = st.nextItemID
		item.CreatedAt = now
		item.UpdatedAt = now
		st.items[item.ID] = stripped(*item)
		return nil
	})
}

func (r *SaleItemRepo) GetByID(_ context.Context, id int64) (*entity.SaleItem, error) {
	var out *entity.SaleItem
	r.v.read(func(st *state) {
		if it, ok := st.items[id]; ok {
			out = expand(st, it)
		}
	})
	return out, nil
}

func (r *SaleItemRepo) GetForUpdate(ctx context.Context, id int64) (*entity.SaleItem, error) {
	return r.GetByID(ctx, id)
}

func (r *SaleItemRepo) Update(_ context.Context, item *entity.SaleItem) error {
	return r.v.write(func(st *state) error {
		current, ok := st.items[item.ID]
		if !ok {
			return domain.ErrItemNotFound
		}
		if err := checkRefs(st, item); err != nil {
			return err
		}
		item.CreatedAt = current.CreatedAt
		item.UpdatedAt = r.v.now()
		st.items[item.ID] = stripped(*item)
		return nil
	})
}

func (r *SaleItemRepo) Delete(_ context.Context, id int64) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.items[id]; !ok {
			return domain.ErrItemNotFound
		}
		delete(st.items, id)
		return nil
	})
}

func (r *SaleItemRepo) ListBySale(_ context.Context, saleID int64) ([]*entity.SaleItem, error) {
	var out []*entity.SaleItem
	r.v.read(func(st *state) {
		for _, it := range st.items {
			if it.SaleID == saleID {
				it := it
				out = append(out, &it)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *SaleItemRepo) List(_ context.Context, f repository.SaleItemFilter) ([]*entity.SaleItem, error) {
	var out []*entity.SaleItem
	r.v.read(func(st *state) {
		for _, it := range st.items {
			if f.SaleID != nil && it.SaleID != *f.SaleID {
				continue
			}
			if f.ProductID != nil && it.ProductID != *f.ProductID {
				continue
			}
			if f.OwnerID != nil {
				s, ok := st.sales[it.SaleID]
				if !ok || s.UserID != *f.OwnerID {
					continue
				}
			}
			out = append(out, expand(st, it))
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if f.Offset >= len(out) {
		return []*entity.SaleItem{}, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

// UserRepo usuarios en memoria.
type UserRepo struct{ v *view }

func (r *UserRepo) GetByID(_ context.Context, id int64) (*entity.User, error) {
	var out *entity.User
	r.v.read(func(st *state) {
		if u, ok := st.users[id]; ok {
			out = &u
		}
	})
	return out, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	var out *entity.User
	r.v.read(func(st *state) {
		for _, u := range st.users {
			if strings.EqualFold(u.Email, email) {
				u := u
				out = &u
				return
			}
		}
	})
	return out, nil
}

func checkRefs(st *state, item *entity.SaleItem) error {
	if _, ok := st.sales[item.SaleID]; !ok {
		return fmt.Errorf("sale_items.sale_id %d: %w", item.SaleID, domain.ErrSaleNotFound)
	}
	if _, ok := st.products[item.ProductID]; !ok {
		return fmt.Errorf("sale_items.product_id %d: %w", item.ProductID, domain.ErrProductNotFound)
	}
	return nil
}

func stripped(it entity.SaleItem) entity.SaleItem {
	it.Product, it.Sale = nil, nil
	return it
}

func expand(st *state, it entity.SaleItem) *entity.SaleItem {
	if p, ok := st.products[it.ProductID]; ok {
		it.Product = &p
	}
	if s, ok := st.sales[it.SaleID]; ok {
		it.Sale = &s
	}
	return &it
}
