package sales_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/sales"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/access"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
)

// ── Fixture ───────────────────────────────────────────────────────────────────

var (
	admin    = entity.Actor{ID: 1, Role: entity.RoleAdmin}
	manager  = entity.Actor{ID: 2, Role: entity.RoleManager}
	cashierA = entity.Actor{ID: 10, Role: entity.RoleCashier} // dueño de la venta 1
	cashierB = entity.Actor{ID: 20, Role: entity.RoleCashier} // dueño de la venta 2
)

func ptr[T any](v T) *T { return &v }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "esperado %s, obtenido %s", want, got.String())
}

// newStore carga dos productos y dos ventas:
//   - producto 1: stock 10, precio 2.00
//   - producto 2: stock 4, precio 3.50
//   - venta 1 (cajero 10): tax 1.00, discount 0.50
//   - venta 2 (cajero 20): sin tax ni descuento
func newStore() *memory.Store {
	s := memory.NewStore()
	s.PutProduct(entity.Product{ID: 1, SKU: "CAF-001", Name: "Café 500g", Price: dec("2.00"), StockLevel: 10})
	s.PutProduct(entity.Product{ID: 2, SKU: "AZU-001", Name: "Azúcar 1kg", Price: dec("3.50"), StockLevel: 4})
	s.PutSale(entity.Sale{ID: 1, UserID: 10, Tax: dec("1.00"), Discount: dec("0.50"), Total: dec("0.50"), Status: entity.SaleStatusPending})
	s.PutSale(entity.Sale{ID: 2, UserID: 20, Status: entity.SaleStatusPending})
	return s
}

func newUseCase(store *memory.Store, runner sales.TxRunner) *sales.SaleItemUseCase {
	if runner == nil {
		runner = store
	}
	return sales.NewSaleItemUseCase(runner, store.SaleItemRepository(), access.NewRolePolicy(),
		sales.RetryPolicy{MaxAttempts: 3}, nil)
}

func createReq(saleID, productID, qty int64, price string) dto.CreateSaleItemRequest {
	return dto.CreateSaleItemRequest{
		SaleID:    ptr(saleID),
		ProductID: ptr(productID),
		Quantity:  ptr(qty),
		Price:     ptr(dec(price)),
	}
}

func stockOf(t *testing.T, store *memory.Store, productID int64) int64 {
	t.Helper()
	p, ok := store.Product(productID)
	require.True(t, ok)
	return p.StockLevel
}

func totalOf(t *testing.T, store *memory.Store, saleID int64) decimal.Decimal {
	t.Helper()
	s, ok := store.Sale(saleID)
	require.True(t, ok)
	return s.Total
}

// assertConsistent verifica stock no negativo y total == Σ(cantidad*precio) + tax - discount.
func assertConsistent(t *testing.T, store *memory.Store, productIDs, saleIDs []int64) {
	t.Helper()
	for _, id := range productIDs {
		assert.GreaterOrEqual(t, stockOf(t, store, id), int64(0), "stock producto %d", id)
	}
	for _, id := range saleIDs {
		s, _ := store.Sale(id)
		want := s.Tax.Sub(s.Discount)
		for _, it := range store.ItemsBySale(id) {
			want = want.Add(it.Subtotal())
		}
		assert.True(t, want.Equal(s.Total), "total venta %d: esperado %s, obtenido %s", id, want, s.Total)
	}
}

// ── Escenarios ────────────────────────────────────────────────────────────────

func TestCreate_ReservaStockYRecalculaTotal(t *testing.T) {
	store := newStore()
	uc := newUseCase(store, nil)

	out, err := uc.Create(context.Background(), cashierA, createReq(1, 1, 5, "2.00"))
	require.NoError(t, err)

	assert.NotZero(t, out.ID)
	assertDecimal(t, "10.00", out.Subtotal)
	require.NotNil(t, out.Product)
	assert.Equal(t, int64(5), out.Product.StockLevel)
	require.NotNil(t, out.Sale)
	assertDecimal(t, "10.50", out.Sale.Total)

	assert.Equal(t, int64(5), stockOf(t, store, 1))
	assertDecimal(t, "10.50", totalOf(t, store, 1))
	assertConsistent(t, store, []int64{1, 2}, []int64{1, 2})
}

func TestCreate_StockInsuficienteNoCambiaNada(t *testing.T) {
	store := newStore()
	uc := newUseCase(store, nil)
	ctx := context.Background()
	_, err := uc.Create(ctx, cashierA, createReq(1, 1, 5, "2.00"))
	require.NoError(t, err)

	_, err = uc.Create(ctx, cashierA, createReq(1, 1, 10, "2.00"))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(1), stockErr.ProductID)
	assert.Equal(t, int64(5), stockErr.Available)
	assert.Equal(t, int64(10), stockErr.Requested)

	assert.Equal(t, int64(5), stockOf(t, store, 1))
	assertDecimal(t, "10.50", totalOf(t, store, 1))
	assert.Len(t, store.ItemsBySale(1), 1)
}

func TestUpdate_ReducirCantidadLiberaStock(t *testing.T) {
	store := newStore()
	uc := newUseCase(store, nil)
	ctx := context.Background()
	created, err := uc.Create(ctx, cashierA, createReq(1, 1, 5, "2.00"))
	require.NoError(t, err)

	out, err := uc.Update(ctx, manager, created.ID, dto.UpdateSaleItemRequest{Quantity: ptr(int64(3))})
	require.NoError(t, err)

	assert.Equal(t, int64(3), out.Quantity)
	assert.Equal(t, int64(7), stockOf(t, store, 1))
	assertDecimal(t, "6.50", totalOf(t, store, 1))
	assertDecimal(t, "6.50", out.Sale.Total)
	assertConsistent(t, store, []int64{1, 2}, []int64{1, 2})
}

func TestUpdate_AumentarCantidadReservaDiferencia(t *testing.T) {
	store := newStore()
	uc := newUseCase(store, nil)
	ctx := context.Background()
	created, err := uc.Create(ctx, cashierA, createReq(1, 1, 5, "2.00"))
	require.NoError(t, err)

	_, err = uc.Update(ctx, cashierA, created.ID, dto.UpdateSaleItemRequest{Quantity: ptr(int64(8)), Price: ptr(dec("1.50"))})
	require.NoError(t, err)
	assert.Equal(t, int64(2), stockOf(t, store, 1))
	assertDecimal(t, "12.50", totalOf(t, store, 1))

	// 8 → 20 requiere 12 más y solo quedan 2
	_, err = uc.Update(ctx, cashierA, created.ID, dto.UpdateSaleItemRequest{Quantity: ptr(int64(20))})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(2), stockOf(t, store, 1))
	it, _ := store.Item(created.ID)
	assert.Equal(t, int64(8), it.Quantity)
}

func TestDelete_CajeroDenegadoAunSiendoDueno(t *testing.T) {
	store := newStore()
	uc := newUseCase(store, nil)
	ctx := context.Background()
	created, err := uc.Create(ctx, cashierA, createReq(1, 1, 5, "2.00"))
	require.NoError(t, err)

	_, err = uc.Delete(ctx, cashierA, created.ID)
	require.ErrorIs(t, err, domain.ErrAccessDenied)

	_, ok := store.Item(created.ID)
	assert.True(t, ok)
	assert.Equal(t, int64(5), stockOf(t, store, 1))
	assertDecimal(t, "10.50", totalOf(t, store, 1))
}

func TestDelete_ManagerLiberaStockYRecalcula(t *testing.T) {
	store := newStore()
	uc := newUseCase(store, nil)
	ctx := context.Background()
	created, err := uc.Create(ctx, cashierA, createReq(1, 1, 5, "2.00"))
	require.NoError(t, err)

	out, err := uc.Delete(ctx, manager, created.ID)
	require.NoError(t, err)

	assert.Equal(t, "ítem de venta eliminado", out.Message)
	assert.Equal(t, created.ID, out.Item.ID)
	assert.Equal(t, int64(10), out.Item.Product.StockLevel)
	assertDecimal(t, "0.50", out.Item.Sale.Total)

	_, ok := store.Item(created.ID)
	assert.False(t, ok)
	assert.Equal(t, int64(10), stockOf(t, store, 1))
	assertDecimal(t, "0.50", totalOf(t, store, 1))
}

func TestGetByID_CajeroAjenoDenegado(t *testing.T) {
	store := newStore()
	uc := newUseCase(store, nil)
	ctx := context.Background()
	created, err := uc.Create(ctx, cashierB, createReq(2, 2, 1, "3.50"))
	require.NoError(t, err)

	_, err = uc.GetByID(ctx, cashierA, created.ID)
	require.ErrorIs(t, err, domain.ErrAccessDenied)

	got, err := uc.GetByID(ctx, cashierB, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	require.NotNil(t, got.Product)
	assert.Equal(t, "AZU-001", got.Product.SKU)
	require.NotNil(t, got.Sale)
	assert.Equal(t, int64(20), got.Sale.UserID)
}

// ── Propiedad y acceso ────────────────────────────────────────────────────────

func TestCajeroAjenoDenegadoEnMutaciones(t *testing.T) {
	store := newStore()
	uc := newUseCase(store, nil)
	ctx := context.Background()
	created, err := uc.Create(ctx, cashierB, createReq(2, 2, 1, "3.50"))
	require.NoError(t, err)

	_, err = uc.Create(ctx, cashierA, createReq(2, 2, 1, "3.50"))
	assert.ErrorIs(t, err, domain.ErrAccessDenied)

	_, err = uc.Update(ctx, cashierA, created.ID, dto.UpdateSaleItemRequest{Quantity: ptr(int64(2))})
	assert.ErrorIs(t, err, domain.ErrAccessDenied)

	_, err = uc.Delete(ctx, cashierA, created.ID)
	assert.ErrorIs(t, err, domain.ErrAccessDenied)

	assert.Equal(t, int64(3), stockOf(t, store, 2))
	assert.Len(t, store.ItemsBySale(2), 1)
}

func TestCreate_RecursosInexistentes(t *testing.T) {
	store := newStore()
	uc := newUseCase(store, nil)
	ctx := context.Background()

	_, err := uc.Create(ctx, admin, createReq(99, 1, 1, "2.00"))
	assert.ErrorIs(t, err, domain.ErrSaleNotFound)

	_, err = uc.Create(ctx, admin, createReq(1, 99, 1, "2.00"))
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = uc.Update(ctx, admin, 99, dto.UpdateSaleItemRequest{Quantity: ptr(int64(1))})
	assert.ErrorIs(t, err, domain.ErrItemNotFound)

	_, err = uc.Delete(ctx, admin, 99)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)

	_, err = uc.GetByID(ctx, admin, 99)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)

	assert.Equal(t, int64(10), stockOf(t, store, 1))
}

func TestCreate_Validacion(t *testing.T) {
	cases := []struct {
		name string
		req  dto.CreateSaleItemRequest
	}{
		{"sin venta", dto.CreateSaleItemRequest{ProductID: ptr(int64(1)), Quantity: ptr(int64(1)), Price: ptr(dec("1"))}},
		{"sin precio", dto.CreateSaleItemRequest{SaleID: ptr(int64(1)), ProductID: ptr(int64(1)), Quantity: ptr(int64(1))}},
		{"cantidad cero", createReq(1, 1, 0, "2.00")},
		{"cantidad negativa", createReq(1, 1, -3, "2.00")},
		{"precio negativo", createReq(1, 1, 1, "-0.01")},
		{"id no positivo", createReq(0, 1, 1, "2.00")},
		{"precio con fracción de centavo", createReq(1, 1, 3, "1.005")},
		{"precio fuera de rango", createReq(1, 1, 1, "99999999999999")},
		{"precio en el límite", createReq(1, 1, 1, "10000000000")},
		{"cantidad fuera de rango", createReq(1, 1, 1<<31, "2.00")},
	}
	store := newStore()
	uc := newUseCase(store, nil)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Create(context.Background(), admin, tc.req)
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		})
	}
	assert.Equal(t, int64(10), stockOf(t, store, 1))
	assert.Empty(t, store.ItemsBySale(1))
}

func TestCreate_PrecioCeroPermitido(t *testing.T) {
	store := newStore()
	uc := newUseCase(store, nil)
	_, err := uc.Create(context.Background(), admin, createReq(1, 1, 2, "0"))
	require.NoError(t, err)
	assertDecimal(t, "0.50", totalOf(t, store, 1))
}

func TestUpdate_Validacion(t *testing.T) {
	store := newStore()
	uc := newUseCase(store, nil)
	ctx := context.Background()
	created, err := uc.Create(ctx, admin, createReq(1, 1, 5, "2.00"))
	require.NoError(t, err)

	for name, req := range map[string]dto.UpdateSaleItemRequest{
		"cantidad cero":   {Quantity: ptr(int64(0))},
		"precio negativo": {Price: ptr(dec("-1"))},
		"venta cero":      {SaleID: ptr(int64(0))},
		"precio 3 dec":    {Price: ptr(dec("1.005"))},
		"precio enorme":   {Price: ptr(dec("99999999999999"))},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := uc.Update(ctx, admin, created.ID, req)
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		})
	}
	assert.Equal(t, int64(5), stockOf(t, store, 1))
	assertDecimal(t, "2.00", store.ItemsBySale(1)[0].Price)
}

// Ceros a la derecha no cuentan como decimales extra.
func TestCreate_PrecioConCerosFinales(t *testing.T) {
	store := newStore()
	uc := newUseCase(store, nil)

	out, err := uc.Create(context.Background(), admin, createReq(1, 1, 3, "1.500"))
	require.NoError(t, err)
	assertDecimal(t, "4.50", out.Subtotal)
	assertDecimal(t, "5.00", out.Sale.Total)
	assertDecimal(t, "5.00", totalOf(t, store, 1))
}

// Descuento mayor que subtotal + tax deja el total negativo y no se rechaza.
func TestTotalNegativoPermitido(t *testing.T) {
	store := newStore()
	store.PutSale(entity.Sale{ID: 3, UserID: 10, Discount: dec("50.00"), Total: dec("-50.00")})
	uc := newUseCase(store, nil)

	out, err := uc.Create(context.Background(), cashierA, createReq(3, 1, 1, "2.00"))
	require.NoError(t, err)
	assertDecimal(t, "-48.00", out.Sale.Total)
}

// ── Cambios de producto y de venta ────────────────────────────────────────────

func TestUpdate_CambioDeProductoLiberaYReserva(t *testing.T) {
	store := newStore()
	uc := newUseCase(store, nil)
	ctx := context.Background()
	created, err := uc.Create(ctx, cashierA, createReq(1, 1, 5, "2.00"))
	require.NoError(t, err)

	out, err := uc.Update(ctx, cashierA, created.ID, dto.UpdateSaleItemRequest{ProductID: ptr(int64(2)), Quantity: ptr(int64(3))})
	require.NoError(t, err)

	assert.Equal(t, int64(2), out.ProductID)
	assert.Equal(t, "AZU-001", out.Product.SKU)
	assert.Equal(t, int64(10), stockOf(t, store, 1))
	assert.Equal(t, int64(1), stockOf(t, store, 2))
	assertDecimal(t, "6.50", totalOf(t, store, 1))
}

func TestUpdate_CambioDeProductoSinStockRevierteLiberacion(t *testing.T) {
	store := newStore()
	uc := newUseCase(store, nil)
	ctx := context.Background()
	created, err := uc.Create(ctx, cashierA, createReq(1, 1, 5, "2.00"))
	require.NoError(t, err)

	_, err = uc.Update(ctx, cashierA, created.ID, dto.UpdateSaleItemRequest{ProductID: ptr(int64(2)), Quantity: ptr(int64(5))})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, int64(5), stockOf(t, store, 1), "la liberación del producto anterior no debe confirmarse")
	assert.Equal(t, int64(4), stockOf(t, store, 2))
	it, _ := store.Item(created.ID)
	assert.Equal(t, int64(1), it.ProductID)
	assert.Equal(t, int64(5), it.Quantity)
}

func TestUpdate_ProductoDestinoInexistente(t *testing.T) {
	store := newStore()
	uc := newUseCase(store, nil)
	ctx := context.Background()
	created, err := uc.Create(ctx, admin, createReq(1, 1, 5, "2.00"))
	require.NoError(t, err)

	_, err = uc.Update(ctx, admin, created.ID, dto.UpdateSaleItemRequest{ProductID: ptr(int64(77))})
	require.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.Equal(t, int64(5), stockOf(t, store, 1))
}

func TestUpdate_MoverEntreVentasRecalculaAmbas(t *testing.T) {
	store := newStore()
	uc := newUseCase(store, nil)
	ctx := context.Background()
	created, err := uc.Create(ctx, cashierA, createReq(1, 1, 5, "2.00"))
	require.NoError(t, err)

	out, err := uc.Update(ctx, admin, created.ID, dto.UpdateSaleItemRequest{SaleID: ptr(int64(2))})
	require.NoError(t, err)

	assert.Equal(t, int64(2), out.SaleID)
	assert.Equal(t, int64(2), out.Sale.ID)
	assertDecimal(t, "0.50", totalOf(t, store, 1))
	assertDecimal(t, "10.00", totalOf(t, store, 2))
	assert.Equal(t, int64(5), stockOf(t, store, 1))
	assertConsistent(t, store, []int64{1, 2}, []int64{1, 2})
}

func TestUpdate_CajeroNoMueveAVentaAjena(t *testing.T) {
	store := newStore()
	uc := newUseCase(store, nil)
	ctx := context.Background()
	created, err := uc.Create(ctx, cashierA, createReq(1, 1, 5, "2.00"))
	require.NoError(t, err)

	_, err = uc.Update(ctx, cashierA, created.ID, dto.UpdateSaleItemRequest{SaleID: ptr(int64(2))})
	require.ErrorIs(t, err, domain.ErrAccessDenied)

	_, err = uc.Update(ctx, cashierA, created.ID, dto.UpdateSaleItemRequest{SaleID: ptr(int64(99))})
	require.ErrorIs(t, err, domain.ErrSaleNotFound)

	it, _ := store.Item(created.ID)
	assert.Equal(t, int64(1), it.SaleID)
	assertDecimal(t, "10.50", totalOf(t, store, 1))
	assertDecimal(t, "0", totalOf(t, store, 2))
}

// ── Lecturas ──────────────────────────────────────────────────────────────────

func TestList_FiltraOrdenaYRestringePorDueno(t *testing.T) {
	store := newStore()
	uc := newUseCase(store, nil)
	ctx := context.Background()
	first, err := uc.Create(ctx, cashierA, createReq(1, 1, 1, "2.00"))
	require.NoError(t, err)
	second, err := uc.Create(ctx, cashierA, createReq(1, 2, 1, "3.50"))
	require.NoError(t, err)
	_, err = uc.Create(ctx, cashierB, createReq(2, 1, 1, "2.00"))
	require.NoError(t, err)

	all, err := uc.List(ctx, manager, dto.SaleItemListRequest{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 3)
	assert.Equal(t, dto.DefaultLimit, all.Page.Limit)

	own, err := uc.List(ctx, cashierA, dto.SaleItemListRequest{})
	require.NoError(t, err)
	require.Len(t, own.Items, 2)
	assert.Equal(t, second.ID, own.Items[0].ID, "orden id DESC")
	assert.Equal(t, first.ID, own.Items[1].ID)

	// cajero A filtrando la venta de B no ve nada
	foreign, err := uc.List(ctx, cashierA, dto.SaleItemListRequest{SaleID: ptr(int64(2))})
	require.NoError(t, err)
	assert.Empty(t, foreign.Items)

	byProduct, err := uc.List(ctx, admin, dto.SaleItemListRequest{ProductID: ptr(int64(1))})
	require.NoError(t, err)
	assert.Len(t, byProduct.Items, 2)

	paged, err := uc.List(ctx, admin, dto.SaleItemListRequest{PageRequest: dto.PageRequest{Limit: 1, Offset: 1}})
	require.NoError(t, err)
	require.Len(t, paged.Items, 1)
	assert.Equal(t, second.ID, paged.Items[0].ID)
}

func TestLecturasIdempotentes(t *testing.T) {
	store := newStore()
	uc := newUseCase(store, nil)
	ctx := context.Background()
	created, err := uc.Create(ctx, cashierA, createReq(1, 1, 2, "2.00"))
	require.NoError(t, err)

	a, err := uc.GetByID(ctx, cashierA, created.ID)
	require.NoError(t, err)
	b, err := uc.GetByID(ctx, cashierA, created.ID)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	la, err := uc.List(ctx, admin, dto.SaleItemListRequest{})
	require.NoError(t, err)
	lb, err := uc.List(ctx, admin, dto.SaleItemListRequest{})
	require.NoError(t, err)
	assert.Equal(t, la, lb)
	assert.Equal(t, int64(8), stockOf(t, store, 1))
}

// ── Transacción, reintentos y errores ─────────────────────────────────────────

type flakyRunner struct {
	inner    sales.TxRunner
	failures int
	err      error
	calls    int
}

func (f *flakyRunner) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	itemRepo repository.SaleItemRepository,
) error) error {
	f.calls++
	if f.calls <= f.failures {
		return f.err
	}
	return f.inner.Run(ctx, fn)
}

func TestExecute_ReintentaConflictoTransitorio(t *testing.T) {
	store := newStore()
	runner := &flakyRunner{inner: store, failures: 2, err: fmt.Errorf("commit: %w", domain.ErrTransientConflict)}
	uc := newUseCase(store, runner)

	_, err := uc.Create(context.Background(), admin, createReq(1, 1, 1, "2.00"))
	require.NoError(t, err)
	assert.Equal(t, 3, runner.calls)
	assert.Equal(t, int64(9), stockOf(t, store, 1))
}

func TestExecute_AgotaReintentos(t *testing.T) {
	store := newStore()
	runner := &flakyRunner{inner: store, failures: 10, err: fmt.Errorf("commit: %w", domain.ErrTransientConflict)}
	uc := newUseCase(store, runner)

	_, err := uc.Create(context.Background(), admin, createReq(1, 1, 1, "2.00"))
	require.ErrorIs(t, err, domain.ErrTransientConflict)
	assert.Equal(t, 3, runner.calls)
	assert.Equal(t, int64(10), stockOf(t, store, 1))
}

func TestExecute_NoReintentaErroresDeDominio(t *testing.T) {
	store := newStore()
	runner := &flakyRunner{inner: store}
	uc := newUseCase(store, runner)

	_, err := uc.Create(context.Background(), admin, createReq(1, 1, 50, "2.00"))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 1, runner.calls)
}

func TestExecute_ErrorInesperadoLlevaCorrelationID(t *testing.T) {
	store := newStore()
	cause := errors.New("conexión perdida")
	runner := &flakyRunner{inner: store, failures: 1, err: cause}
	uc := newUseCase(store, runner)

	_, err := uc.Create(context.Background(), admin, createReq(1, 1, 1, "2.00"))
	var internal *domain.InternalError
	require.ErrorAs(t, err, &internal)
	assert.NotEmpty(t, internal.CorrelationID)
	assert.ErrorIs(t, err, cause)
	assert.False(t, domain.IsKnown(err))
	assert.Equal(t, 1, runner.calls)
}

func TestExecute_ContextoCanceladoNoConfirma(t *testing.T) {
	store := newStore()
	uc := newUseCase(store, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uc.Create(ctx, admin, createReq(1, 1, 1, "2.00"))
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(10), stockOf(t, store, 1))
	assert.Empty(t, store.ItemsBySale(1))
}

// ── Concurrencia e invariantes ────────────────────────────────────────────────

func TestCreatesConcurrentesNoSobrevenden(t *testing.T) {
	store := newStore()
	uc := newUseCase(store, nil)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, fail int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(saleID int64) {
			defer wg.Done()
			_, err := uc.Create(context.Background(), admin, createReq(saleID, 2, 1, "3.50"))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
				return
			}
			if errors.Is(err, domain.ErrInsufficientStock) {
				fail++
			}
		}(int64(i%2 + 1))
	}
	wg.Wait()

	assert.Equal(t, 4, ok)
	assert.Equal(t, 16, fail)
	assert.Equal(t, int64(0), stockOf(t, store, 2))
	assertConsistent(t, store, []int64{1, 2}, []int64{1, 2})
}

// Secuencia pseudoaleatoria de operaciones: tras cada una se cumplen las invariantes y
// stock + unidades en ítems se conserva por producto.
func TestSecuenciaAleatoriaConservaInvariantes(t *testing.T) {
	store := newStore()
	uc := newUseCase(store, nil)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))
	initial := map[int64]int64{1: 10, 2: 4}
	var ids []int64

	for step := 0; step < 200; step++ {
		switch op := rng.Intn(3); {
		case op == 0 || len(ids) == 0:
			out, err := uc.Create(ctx, admin, createReq(rng.Int63n(2)+1, rng.Int63n(2)+1, rng.Int63n(4)+1, "1.25"))
			if err == nil {
				ids = append(ids, out.ID)
			} else {
				require.ErrorIs(t, err, domain.ErrInsufficientStock)
			}
		case op == 1:
			id := ids[rng.Intn(len(ids))]
			_, err := uc.Update(ctx, manager, id, dto.UpdateSaleItemRequest{
				SaleID:    ptr(rng.Int63n(2) + 1),
				ProductID: ptr(rng.Int63n(2) + 1),
				Quantity:  ptr(rng.Int63n(5) + 1),
			})
			if err != nil {
				require.ErrorIs(t, err, domain.ErrInsufficientStock)
			}
		default:
			i := rng.Intn(len(ids))
			_, err := uc.Delete(ctx, manager, ids[i])
			require.NoError(t, err)
			ids = append(ids[:i], ids[i+1:]...)
		}

		assertConsistent(t, store, []int64{1, 2}, []int64{1, 2})
		for productID, want := range initial {
			held := int64(0)
			for _, saleID := range []int64{1, 2} {
				for _, it := range store.ItemsBySale(saleID) {
					if it.ProductID == productID {
						held += it.Quantity
					}
				}
			}
			require.Equal(t, want, stockOf(t, store, productID)+held, "paso %d producto %d", step, productID)
		}
	}
}
