package checkout_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/puntoventa-api/internal/application/checkout"
	"github.com/jhoicas/puntoventa-api/internal/application/dto"
	"github.com/jhoicas/puntoventa-api/internal/application/stock"
	"github.com/jhoicas/puntoventa-api/internal/domain"
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/domain/measure"
	"github.com/jhoicas/puntoventa-api/internal/infrastructure/memory"
	"github.com/jhoicas/puntoventa-api/pkg/jwt"
	"github.com/jhoicas/puntoventa-api/pkg/logger"
)

const team = "team-1"

var (
	cashier = checkout.Cashier{TeamID: team, UserID: "cajero-1", Role: jwt.RoleVendedor}
	admin   = checkout.Cashier{TeamID: team, UserID: "admin-1", Role: jwt.RoleAdmin}
)

type fixture struct {
	store    *memory.Store
	ledger   *stock.LedgerUseCase
	checkout *checkout.CheckoutUseCase
}

func newFixture(t *testing.T, locker checkout.Locker) *fixture {
	t.Helper()
	s := memory.NewStore()
	runner := memory.NewTxRunner(s)
	f := &fixture{
		store:    s,
		ledger:   stock.NewLedgerUseCase(runner, s.Repos(), logger.Nop()),
		checkout: checkout.NewCheckoutUseCase(runner, s.Repos(), locker, time.Second, logger.Nop()),
	}
	require.NoError(t, s.Repos().Places.Create(context.Background(), &entity.Place{
		ID: "pl-1", TeamID: team, Name: "Tienda centro", Currency: "EUR", Active: true, CreatedAt: time.Now(),
	}))
	return f
}

// item crea un artículo con stock de bodega y asigna allocated al lugar pl-1.
func (f *fixture) item(t *testing.T, id string, mt measure.Type, price string, taxBps int, allocated int64) {
	t.Helper()
	now := time.Now()
	require.NoError(t, f.store.Repos().Items.Create(context.Background(), &entity.Item{
		ID: id, TeamID: team, Name: "Artículo " + id, MeasurementType: mt,
		Price: decimal.RequireFromString(price), TaxRateBps: taxBps, Active: true,
		WarehouseStock: allocated + 100, CreatedAt: now, UpdatedAt: now,
	}))
	if allocated > 0 {
		_, err := f.ledger.Allocate(context.Background(), team, "bodega", "pl-1",
			dto.AllocateRequest{ItemID: id, Quantity: decimal.NewFromInt(allocated)})
		require.NoError(t, err)
	}
}

func (f *fixture) allocated(t *testing.T, itemID string) int64 {
	t.Helper()
	a, err := f.store.Repos().Allocations.GetForUpdate(context.Background(), "pl-1", itemID)
	require.NoError(t, err)
	if a == nil {
		return 0
	}
	return a.AllocatedQuantity
}

func (f *fixture) receiptCount(t *testing.T) int {
	t.Helper()
	_, total, err := f.store.Repos().Receipts.ListByPlace(context.Background(), "pl-1", 1, 0)
	require.NoError(t, err)
	return total
}

func money(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func sale(method string, given *decimal.Decimal, lines ...dto.CheckoutLineRequest) dto.CheckoutRequest {
	return dto.CheckoutRequest{PlaceID: "pl-1", Items: lines, AmountGiven: given, PaymentOption: method}
}

func ln(itemID string, q int64) dto.CheckoutLineRequest {
	return dto.CheckoutLineRequest{ItemID: itemID, Quantity: q}
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenarios de cobro
// ──────────────────────────────────────────────────────────────────────────────

func TestCheckout_VentaSimple(t *testing.T) {
	f := newFixture(t, nil)
	f.item(t, "camiseta", measure.PCS, "10.00", 2100, 5)

	res, err := f.checkout.Checkout(context.Background(), cashier, "", sale("CASH", money("25.00"), ln("camiseta", 2)))
	require.NoError(t, err)
	require.False(t, res.Replayed)

	rc := res.Receipt
	require.Len(t, rc.Items, 1)
	assert.Equal(t, "20.00", rc.Items[0].LineTotal.StringFixed(2))
	assert.Equal(t, "4.20", rc.Items[0].LineTax.StringFixed(2))
	assert.Equal(t, "20.00", rc.TotalAmount.StringFixed(2))
	assert.Equal(t, "4.20", rc.TaxAmount.StringFixed(2))
	assert.Equal(t, "25.00", rc.AmountGiven.StringFixed(2))
	assert.Equal(t, "5.00", rc.ChangeAmount.StringFixed(2))
	assert.Equal(t, "EUR", rc.Currency)
	assert.Equal(t, "cajero-1", rc.CashierID)
	assert.Equal(t, int64(3), f.allocated(t, "camiseta"), "quedan 3 asignadas")
}

func TestCheckout_SobreventaRechazada(t *testing.T) {
	f := newFixture(t, nil)
	f.item(t, "camiseta", measure.PCS, "10.00", 2100, 5)

	_, err := f.checkout.Checkout(context.Background(), cashier, "", sale("CASH", money("100"), ln("camiseta", 6)))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, "camiseta", ise.ItemID)
	assert.Equal(t, int64(6), ise.Requested)
	assert.Equal(t, int64(5), ise.Available)
	assert.Equal(t, int64(5), f.allocated(t, "camiseta"))
	assert.Equal(t, 0, f.receiptCount(t))
}

func TestCheckout_AtomicidadMultiplesLineas(t *testing.T) {
	f := newFixture(t, nil)
	f.item(t, "a", measure.PCS, "1.00", 0, 5)
	f.item(t, "b", measure.PCS, "1.00", 0, 1)
	f.item(t, "c", measure.PCS, "1.00", 0, 5)

	_, err := f.checkout.Checkout(context.Background(), cashier, "",
		sale("CARD", nil, ln("a", 2), ln("b", 2), ln("c", 2)))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, int64(5), f.allocated(t, "a"))
	assert.Equal(t, int64(1), f.allocated(t, "b"))
	assert.Equal(t, int64(5), f.allocated(t, "c"))
	assert.Equal(t, 0, f.receiptCount(t), "no se crea recibo")
}

func TestCheckout_ArticuloNoAsignadoEsStockInsuficiente(t *testing.T) {
	f := newFixture(t, nil)
	f.item(t, "a", measure.PCS, "1.00", 0, 0)

	_, err := f.checkout.Checkout(context.Background(), cashier, "", sale("CARD", nil, ln("a", 1)))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestCheckout_PagoInsuficiente(t *testing.T) {
	f := newFixture(t, nil)
	f.item(t, "camiseta", measure.PCS, "10.00", 2100, 5)

	_, err := f.checkout.Checkout(context.Background(), cashier, "", sale("CASH", money("19.99"), ln("camiseta", 2)))
	require.ErrorIs(t, err, domain.ErrInsufficientPayment)
	assert.Equal(t, int64(5), f.allocated(t, "camiseta"))
	assert.Equal(t, 0, f.receiptCount(t))
}

func TestCheckout_TarjetaIgnoraMontoEntregado(t *testing.T) {
	f := newFixture(t, nil)
	f.item(t, "camiseta", measure.PCS, "10.00", 2100, 5)

	res, err := f.checkout.Checkout(context.Background(), cashier, "", sale("card", money("1"), ln("camiseta", 1)))
	require.NoError(t, err)
	assert.Equal(t, "CARD", res.Receipt.PaymentOption)
	assert.True(t, res.Receipt.AmountGiven.Equal(res.Receipt.TotalAmount))
	assert.True(t, res.Receipt.ChangeAmount.IsZero())
}

func TestCheckout_PesoSeCotizaPorKilo(t *testing.T) {
	f := newFixture(t, nil)
	f.item(t, "harina", measure.WEIGHT, "4.00", 1000, 3000)

	res, err := f.checkout.Checkout(context.Background(), cashier, "", sale("CASH", money("10"), ln("harina", 1500)))
	require.NoError(t, err)
	assert.Equal(t, "6.00", res.Receipt.TotalAmount.StringFixed(2))
	assert.Equal(t, "0.60", res.Receipt.TaxAmount.StringFixed(2))
	assert.Equal(t, "1.50 kg", res.Receipt.Items[0].QuantityLabel)
	assert.Equal(t, int64(1500), f.allocated(t, "harina"))
}

func TestCheckout_LineasRepetidasSeUnen(t *testing.T) {
	f := newFixture(t, nil)
	f.item(t, "a", measure.PCS, "2.00", 0, 5)

	res, err := f.checkout.Checkout(context.Background(), cashier, "", sale("CARD", nil, ln("a", 2), ln("a", 3)))
	require.NoError(t, err)
	require.Len(t, res.Receipt.Items, 1)
	assert.Equal(t, int64(5), res.Receipt.Items[0].Quantity)
	assert.Equal(t, int64(0), f.allocated(t, "a"))

	_, err = f.checkout.Checkout(context.Background(), cashier, "", sale("CARD", nil, ln("a", 1)))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock, "asignación agotada")
}

func TestCheckout_PrecioCongeladoEnElRecibo(t *testing.T) {
	f := newFixture(t, nil)
	f.item(t, "a", measure.PCS, "2.00", 0, 5)
	ctx := context.Background()

	res, err := f.checkout.Checkout(ctx, cashier, "", sale("CARD", nil, ln("a", 1)))
	require.NoError(t, err)

	it, err := f.store.Repos().Items.GetByID(ctx, "a")
	require.NoError(t, err)
	it.Price = decimal.RequireFromString("9.99")
	require.NoError(t, f.store.Repos().Items.Update(ctx, it))

	stored, err := f.store.Repos().Receipts.GetByID(ctx, res.Receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, "2.00", stored.Lines[0].UnitPrice.StringFixed(2))
}

func TestCheckout_Devolucion(t *testing.T) {
	f := newFixture(t, nil)
	f.item(t, "a", measure.PCS, "10.00", 2100, 3)
	ctx := context.Background()

	_, err := f.checkout.Checkout(ctx, cashier, "", sale("CARD", nil, ln("a", 2)))
	require.NoError(t, err)
	require.Equal(t, int64(1), f.allocated(t, "a"))

	_, err = f.checkout.Checkout(ctx, cashier, "", sale("REFUND", nil, ln("a", 1)))
	require.ErrorIs(t, err, domain.ErrForbidden, "solo admin devuelve")

	res, err := f.checkout.Checkout(ctx, admin, "", sale("REFUND", nil, ln("a", 2)))
	require.NoError(t, err)
	assert.Equal(t, "-20.00", res.Receipt.TotalAmount.StringFixed(2))
	assert.Equal(t, "-4.20", res.Receipt.TaxAmount.StringFixed(2))
	assert.True(t, res.Receipt.AmountGiven.Equal(res.Receipt.TotalAmount))
	assert.True(t, res.Receipt.ChangeAmount.IsZero())
	assert.Equal(t, int64(3), f.allocated(t, "a"), "vuelve a la asignación, no a bodega")
}

func TestCheckout_DevolucionNoSuperaLoVendido(t *testing.T) {
	f := newFixture(t, nil)
	f.item(t, "a", measure.PCS, "10.00", 0, 5)
	f.item(t, "nuevo", measure.PCS, "10.00", 0, 0)
	ctx := context.Background()

	_, err := f.checkout.Checkout(ctx, admin, "", sale("REFUND", nil, ln("nuevo", 50)))
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve, "nada vendido, nada que devolver")
	assert.Equal(t, "items[0].quantity", ve.Field)
	assert.Equal(t, int64(0), f.allocated(t, "nuevo"))

	_, err = f.checkout.Checkout(ctx, cashier, "", sale("CARD", nil, ln("a", 3)))
	require.NoError(t, err)

	_, err = f.checkout.Checkout(ctx, admin, "", sale("REFUND", nil, ln("a", 4)))
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "items[0].quantity", ve.Field)

	_, err = f.checkout.Checkout(ctx, admin, "", sale("REFUND", nil, ln("a", 2)))
	require.NoError(t, err)
	_, err = f.checkout.Checkout(ctx, admin, "", sale("REFUND", nil, ln("a", 2)))
	require.ErrorAs(t, err, &ve, "ya se devolvieron 2 de 3")

	_, err = f.checkout.Checkout(ctx, admin, "", sale("REFUND", nil, ln("a", 1)))
	require.NoError(t, err)
	assert.Equal(t, int64(5), f.allocated(t, "a"))
	assert.Equal(t, 3, f.receiptCount(t))
}

func TestCheckout_CampoConIndiceDeLaPeticion(t *testing.T) {
	f := newFixture(t, nil)
	f.item(t, "a", measure.PCS, "1.00", 0, 5)
	f.item(t, "b", measure.PCS, "1.00", 0, 5)
	ctx := context.Background()

	it, err := f.store.Repos().Items.GetByID(ctx, "b")
	require.NoError(t, err)
	it.Active = false
	require.NoError(t, f.store.Repos().Items.Update(ctx, it))

	_, err = f.checkout.Checkout(ctx, cashier, "", sale("CARD", nil, ln("a", 1), ln("a", 1), ln("b", 1)))
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "items[2].itemId", ve.Field, "índice de la línea enviada, no de la unida")
}

func TestCheckout_Validaciones(t *testing.T) {
	f := newFixture(t, nil)
	f.item(t, "a", measure.PCS, "1.00", 0, 5)
	ctx := context.Background()

	cases := []struct {
		name  string
		req   dto.CheckoutRequest
		field string
	}{
		{"sin lugar", dto.CheckoutRequest{Items: []dto.CheckoutLineRequest{ln("a", 1)}, PaymentOption: "CARD"}, "placeId"},
		{"forma de pago", sale("BITCOIN", nil, ln("a", 1)), "paymentOption"},
		{"sin líneas", sale("CARD", nil), "items"},
		{"cantidad cero", sale("CARD", nil, ln("a", 0)), "items[0].quantity"},
		{"sin artículo", sale("CARD", nil, ln("", 1)), "items[0].itemId"},
		{"efectivo sin monto", sale("CASH", nil, ln("a", 1)), "amountGiven"},
		{"monto negativo", sale("CASH", money("-1"), ln("a", 1)), "amountGiven"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.checkout.Checkout(ctx, cashier, "", tc.req)
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
		})
	}
	assert.Equal(t, int64(5), f.allocated(t, "a"))
}

func TestCheckout_LugarInactivoYAjeno(t *testing.T) {
	f := newFixture(t, nil)
	f.item(t, "a", measure.PCS, "1.00", 0, 5)
	ctx := context.Background()

	_, err := f.checkout.Checkout(ctx, checkout.Cashier{TeamID: "otro", UserID: "x"}, "", sale("CARD", nil, ln("a", 1)))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	p, err := f.store.Repos().Places.GetByID(ctx, "pl-1")
	require.NoError(t, err)
	p.Active = false
	require.NoError(t, f.store.Repos().Places.Update(ctx, p))

	_, err = f.checkout.Checkout(ctx, cashier, "", sale("CARD", nil, ln("a", 1)))
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "placeId", ve.Field)
}

// ──────────────────────────────────────────────────────────────────────────────
// Idempotencia
// ──────────────────────────────────────────────────────────────────────────────

func TestCheckout_ReintentoDevuelveElMismoRecibo(t *testing.T) {
	f := newFixture(t, nil)
	f.item(t, "a", measure.PCS, "10.00", 0, 5)
	ctx := context.Background()
	req := sale("CASH", money("50"), ln("a", 2))

	first, err := f.checkout.Checkout(ctx, cashier, "llave-1", req)
	require.NoError(t, err)
	second, err := f.checkout.Checkout(ctx, cashier, "llave-1", req)
	require.NoError(t, err)

	assert.True(t, second.Replayed)
	assert.Equal(t, first.Receipt.ID, second.Receipt.ID)
	assert.Equal(t, int64(3), f.allocated(t, "a"), "el stock se descuenta una sola vez")
	assert.Equal(t, 1, f.receiptCount(t))

	_, err = f.checkout.Checkout(ctx, cashier, "llave-1", sale("CASH", money("50"), ln("a", 1)))
	assert.ErrorIs(t, err, domain.ErrConflict, "misma llave con otro cuerpo")

	other, err := f.checkout.Checkout(ctx, checkout.Cashier{TeamID: team, UserID: "otro"}, "llave-2", req)
	require.NoError(t, err)
	assert.NotEqual(t, first.Receipt.ID, other.Receipt.ID)
}

func TestCheckout_FalloNoConsumeLaLlave(t *testing.T) {
	f := newFixture(t, nil)
	f.item(t, "a", measure.PCS, "10.00", 0, 1)
	ctx := context.Background()

	_, err := f.checkout.Checkout(ctx, cashier, "llave", sale("CARD", nil, ln("a", 2)))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	res, err := f.checkout.Checkout(ctx, cashier, "llave", sale("CARD", nil, ln("a", 1)))
	require.NoError(t, err, "la llave se libera con el rollback")
	assert.False(t, res.Replayed)
}

type busyLocker struct{}

func (busyLocker) Obtain(context.Context, string, time.Duration) (func(), error) {
	return nil, domain.ErrIdempotencyInProgress
}

type recordingLocker struct {
	mu       sync.Mutex
	keys     []string
	released int
}

func (l *recordingLocker) Obtain(_ context.Context, key string, _ time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.keys = append(l.keys, key)
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.released++
	}, nil
}

func TestCheckout_Locker(t *testing.T) {
	f := newFixture(t, busyLocker{})
	f.item(t, "a", measure.PCS, "1.00", 0, 5)

	_, err := f.checkout.Checkout(context.Background(), cashier, "k", sale("CARD", nil, ln("a", 1)))
	require.ErrorIs(t, err, domain.ErrIdempotencyInProgress)
	assert.Equal(t, int64(5), f.allocated(t, "a"))

	rec := &recordingLocker{}
	f2 := newFixture(t, rec)
	f2.item(t, "a", measure.PCS, "1.00", 0, 5)
	_, err = f2.checkout.Checkout(context.Background(), cashier, "k", sale("CARD", nil, ln("a", 1)))
	require.NoError(t, err)
	_, err = f2.checkout.Checkout(context.Background(), cashier, "", sale("CARD", nil, ln("a", 1)))
	require.NoError(t, err)
	assert.Equal(t, []string{"checkout:team-1:k"}, rec.keys, "solo se bloquea con llave")
	assert.Equal(t, 1, rec.released)
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia y conservación
// ──────────────────────────────────────────────────────────────────────────────

func TestCheckout_CajasConcurrentesNoSobrevenden(t *testing.T) {
	f := newFixture(t, nil)
	f.item(t, "a", measure.PCS, "1.00", 0, 5)

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		sold, lost int
	)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.checkout.Checkout(context.Background(), cashier, "", sale("CARD", nil, ln("a", 1)))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				sold++
			case errors.Is(err, domain.ErrInsufficientStock):
				lost++
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, sold)
	assert.Equal(t, 7, lost)
	assert.Equal(t, int64(0), f.allocated(t, "a"))
	assert.Equal(t, 5, f.receiptCount(t))
}

func TestConservacion_SecuenciaDeOperaciones(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	require.NoError(t, f.store.Repos().Places.Create(ctx, &entity.Place{ID: "pl-2", TeamID: team, Name: "Feria", Currency: "EUR", Active: true}))

	box, err := f.ledger.SubmitBox(ctx, team, "u", dto.BoxRequest{
		BaseName: "Pantalón", MeasurementType: "PCS", Price: decimal.NewFromInt(30),
		Sizes: []dto.BoxSizeRequest{{Size: "40", Quantity: decimal.NewFromInt(20)}},
	})
	require.NoError(t, err)
	id := box.Items[0].Item.ID
	added := int64(20)
	sold := int64(0)

	check := func(step string) {
		t.Helper()
		it, err := f.store.Repos().Items.GetByID(ctx, id)
		require.NoError(t, err)
		var alloc int64
		for _, pl := range []string{"pl-1", "pl-2"} {
			a, err := f.store.Repos().Allocations.GetForUpdate(ctx, pl, id)
			require.NoError(t, err)
			if a != nil {
				require.GreaterOrEqual(t, a.AllocatedQuantity, int64(0), step)
				alloc += a.AllocatedQuantity
			}
		}
		require.GreaterOrEqual(t, it.WarehouseStock, int64(0), step)
		assert.LessOrEqual(t, it.WarehouseStock+alloc+sold, added, step)
	}

	steps := []func() error{
		func() error {
			_, err := f.ledger.Allocate(ctx, team, "u", "pl-1", dto.AllocateRequest{ItemID: id, Quantity: decimal.NewFromInt(8)})
			return err
		},
		func() error {
			_, err := f.ledger.Allocate(ctx, team, "u", "pl-2", dto.AllocateRequest{ItemID: id, Quantity: decimal.NewFromInt(15)})
			return err // bodega insuficiente
		},
		func() error {
			_, err := f.checkout.Checkout(ctx, cashier, "", sale("CARD", nil, ln(id, 3)))
			if err == nil {
				sold += 3
			}
			return err
		},
		func() error {
			_, err := f.checkout.Checkout(ctx, cashier, "", sale("CARD", nil, ln(id, 6)))
			return err // asignación insuficiente
		},
		func() error {
			_, err := f.ledger.Allocate(ctx, team, "u", "pl-2", dto.AllocateRequest{ItemID: id, Quantity: decimal.NewFromInt(12)})
			return err
		},
		func() error { return f.ledger.Deallocate(ctx, team, "u", "pl-2", id) },
		func() error {
			_, err := f.ledger.AdjustWarehouseStock(ctx, team, "u", id, dto.AdjustStockRequest{Delta: decimal.NewFromInt(5)})
			if err == nil {
				added += 5
			}
			return err
		},
		func() error {
			_, err := f.checkout.Checkout(ctx, cashier, "", sale("CARD", nil, ln(id, 5)))
			if err == nil {
				sold += 5
			}
			return err
		},
		func() error {
			_, err := f.checkout.Checkout(ctx, admin, "", sale("REFUND", nil, ln(id, 2)))
			if err == nil {
				sold -= 2
			}
			return err
		},
		func() error {
			_, err := f.checkout.Checkout(ctx, admin, "", sale("REFUND", nil, ln(id, 20)))
			return err // supera lo vendido
		},
	}
	for i, step := range steps {
		_ = step()
		check(fmt.Sprintf("paso %d", i+1))
	}
	assert.Equal(t, int64(6), sold)
}
