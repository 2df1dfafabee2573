// Package memory implementa los puertos de persistencia en memoria. Las transacciones se
// serializan con un mutex y trabajan sobre una copia del estado que solo se publica en el
// commit, de modo que un rollback descarta todo lo escrito.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/pos-api/internal/application/sales"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ sales.TxRunner = (*Store)(nil)

type state struct {
	products   map[int64]entity.Product
	sales      map[int64]entity.Sale
	items      map[int64]entity.SaleItem
	users      map[int64]entity.User
	nextSaleID int64
	nextItemID int64
}

func newState() *state {
	return &state{
		products: make(map[int64]entity.Product),
		sales:    make(map[int64]entity.Sale),
		items:    make(map[int64]entity.SaleItem),
		users:    make(map[int64]entity.User),
	}
}

func (s *state) clone() *state {
	c := &state{
		products:   make(map[int64]entity.Product, len(s.products)),
		sales:      make(map[int64]entity.Sale, len(s.sales)),
		items:      make(map[int64]entity.SaleItem, len(s.items)),
		users:      s.users, // solo lectura dentro de transacciones
		nextSaleID: s.nextSaleID,
		nextItemID: s.nextItemID,
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.sales {
		c.sales[k] = v
	}
	for k, v := range s.items {
		c.items[k] = v
	}
	return c
}

// Store almacenamiento en memoria con semántica transaccional todo-o-nada.
type Store struct {
	mu  sync.RWMutex
	st  *state
	now func() time.Time
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: newState(), now: time.Now}
}

// Run ejecuta fn con repositorios sobre una copia del estado. Commit = publicar la copia.
// Si fn falla o el contexto se cancela antes del commit, la copia se descarta.
func (s *Store) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	itemRepo repository.SaleItemRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	v := &view{st: s.st.clone(), now: s.now}
	if err := fn(&ProductRepo{v: v}, &SaleRepo{v: v}, &SaleItemRepo{v: v}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = v.st
	return nil
}

// ProductRepository repositorio fuera de transacción.
func (s *Store) ProductRepository() *ProductRepo { return &ProductRepo{v: s.shared()} }

// SaleRepository repositorio fuera de transacción.
func (s *Store) SaleRepository() *SaleRepo { return &SaleRepo{v: s.shared()} }

// SaleItemRepository repositorio fuera de transacción (lecturas del caso de uso).
func (s *Store) SaleItemRepository() *SaleItemRepo { return &SaleItemRepo{v: s.shared()} }

// UserRepository repositorio de usuarios.
func (s *Store) UserRepository() *UserRepo { return &UserRepo{v: s.shared()} }

func (s *Store) shared() *view { return &view{store: s, now: s.now} }

// PutProduct inserta o reemplaza un producto (carga inicial).
func (s *Store) PutProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.products[p.ID] = p
}

// PutSale inserta o reemplaza una venta (carga inicial).
func (s *Store) PutSale(v entity.Sale) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v.ID > s.st.nextSaleID {
		s.st.nextSaleID = v.ID
	}
	s.st.sales[v.ID] = v
}

// PutUser inserta o reemplaza un usuario (carga inicial).
func (s *Store) PutUser(u entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.users[u.ID] = u
}

// PutItem inserta un ítem tal cual, sin tocar stock ni totales (carga inicial). Asigna ID si es 0.
func (s *Store) PutItem(it entity.SaleItem) entity.SaleItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	if it.ID == 0 {
		s.st.nextItemID++
		it.ID = s.st.nextItemID
	} else if it.ID > s.st.nextItemID {
		s.st.nextItemID = it.ID
	}
	it.Product, it.Sale = nil, nil
	s.st.items[it.ID] = it
	return it
}

// Product devuelve el producto confirmado con ese id.
func (s *Store) Product(id int64) (entity.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.st.products[id]
	return p, ok
}

// Sale devuelve la venta confirmada con ese id.
func (s *Store) Sale(id int64) (entity.Sale, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.st.sales[id]
	return v, ok
}

// Item devuelve el ítem confirmado con ese id.
func (s *Store) Item(id int64) (entity.SaleItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.st.items[id]
	return it, ok
}

// ItemsBySale devuelve los ítems confirmados de una venta.
func (s *Store) ItemsBySale(saleID int64) []entity.SaleItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entity.SaleItem
	for _, it := range s.st.items {
		if it.SaleID == saleID {
			out = append(out, it)
		}
	}
	return out
}

// view acceso al estado: dentro de una tx (store nil, el lock lo tiene Run) o compartido.
type view struct {
	store *Store
	st    *state
	now   func() time.Time
}

func (v *view) read(fn func(st *state)) {
	if v.store == nil {
		fn(v.st)
		return
	}
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	fn(v.store.st)
}

func (v *view) write(fn func(st *state) error) error {
	if v.store == nil {
		return fn(v.st)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.st)
}
