package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/puntoventa-api/internal/application/dto"
	"github.com/jhoicas/puntoventa-api/internal/application/stock"
	"github.com/jhoicas/puntoventa-api/internal/application/usecase"
	"github.com/jhoicas/puntoventa-api/internal/domain"
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/infrastructure/memory"
	"github.com/jhoicas/puntoventa-api/pkg/logger"
)

const team = "team-1"

func newItems(t *testing.T) (*usecase.ItemUseCase, *memory.Store) {
	t.Helper()
	s := memory.NewStore()
	return usecase.NewItemUseCase(memory.NewTxRunner(s), s.Repos(), logger.Nop()), s
}

func createItem(t *testing.T, uc *usecase.ItemUseCase, name, sku string) *dto.ItemResponse {
	t.Helper()
	out, err := uc.Create(context.Background(), team, dto.CreateItemRequest{
		Name: name, SKU: sku, MeasurementType: "pcs", Price: decimal.RequireFromString("4.50"), TaxRateBps: 500,
		Tags: []string{"verano", " Verano ", ""},
	})
	require.NoError(t, err)
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Artículos
// ──────────────────────────────────────────────────────────────────────────────

func TestItemUseCase_Create(t *testing.T) {
	uc, _ := newItems(t)
	out := createItem(t, uc, "Gorra", "GOR-1")

	assert.Equal(t, "PCS", out.MeasurementType)
	assert.True(t, out.Active)
	assert.Equal(t, int64(0), out.WarehouseStock, "el stock entra por caja o ajuste")
	assert.Equal(t, []string{"verano"}, out.Tags)
	assert.Equal(t, "pcs", out.Unit)

	_, err := uc.Create(context.Background(), team, dto.CreateItemRequest{Name: "Otra", SKU: "GOR-1", MeasurementType: "PCS"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.Create(context.Background(), team, dto.CreateItemRequest{Name: "X", MeasurementType: "PCS", TaxRateBps: 20000})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "taxRateBps", ve.Field)

	_, err = uc.Create(context.Background(), team, dto.CreateItemRequest{Name: "X", MeasurementType: "LITROS"})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "measurementType", ve.Field)
}

func TestItemUseCase_UpdateNoTocaStock(t *testing.T) {
	uc, s := newItems(t)
	out := createItem(t, uc, "Gorra", "")
	require.NoError(t, s.Repos().Items.SetWarehouseStock(context.Background(), out.ID, 9))

	price := decimal.RequireFromString("5.00")
	name := "Gorra roja"
	upd, err := uc.Update(context.Background(), team, out.ID, dto.UpdateItemRequest{Name: &name, Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "Gorra roja", upd.Name)
	assert.Equal(t, "5.00", upd.Price.StringFixed(2))

	got, err := uc.GetByID(context.Background(), team, out.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(9), got.WarehouseStock)

	_, err = uc.GetByID(context.Background(), "otro", out.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestItemUseCase_ListConBusqueda(t *testing.T) {
	uc, _ := newItems(t)
	createItem(t, uc, "Gorra", "G-1")
	createItem(t, uc, "Camiseta", "C-1")
	createItem(t, uc, "Gorro lana", "G-2")

	out, err := uc.List(context.Background(), team, "gor", false, 10, 0)
	require.NoError(t, err)
	assert.Len(t, out.Items, 2)
	assert.Equal(t, 2, out.Page.Total)

	out, err = uc.List(context.Background(), team, "", false, 1, 0)
	require.NoError(t, err)
	assert.Len(t, out.Items, 1)
	assert.Equal(t, 3, out.Page.Total)
}

func TestItemUseCase_DeleteConReferenciasEsConflicto(t *testing.T) {
	uc, s := newItems(t)
	ctx := context.Background()
	out := createItem(t, uc, "Gorra", "")
	require.NoError(t, s.Repos().Places.Create(ctx, &entity.Place{ID: "pl-1", TeamID: team, Name: "Tienda", Currency: "EUR", Active: true}))
	require.NoError(t, s.Repos().Items.SetWarehouseStock(ctx, out.ID, 5))

	ledger := stock.NewLedgerUseCase(memory.NewTxRunner(s), s.Repos(), logger.Nop())
	_, err := ledger.Allocate(ctx, team, "u", "pl-1", dto.AllocateRequest{ItemID: out.ID, Quantity: decimal.NewFromInt(1)})
	require.NoError(t, err)

	err = uc.Delete(ctx, team, "u", out.ID)
	require.ErrorIs(t, err, domain.ErrConflict)

	deact, err := uc.Deactivate(ctx, team, "u", out.ID)
	require.NoError(t, err)
	assert.False(t, deact.Active)

	require.NoError(t, ledger.Deallocate(ctx, team, "u", "pl-1", out.ID))
	require.NoError(t, uc.Delete(ctx, team, "u", out.ID))
	_, err = uc.GetByID(ctx, team, out.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	movs, err := s.Repos().Movements.ListByItem(ctx, out.ID, 0, 0)
	require.NoError(t, err)
	require.NotEmpty(t, movs)
	assert.Equal(t, entity.MovementDelete, movs[0].Type, "el borrado queda en el libro")
	assert.Equal(t, int64(-4), movs[0].WarehouseDelta)
}

// ──────────────────────────────────────────────────────────────────────────────
// Lugares
// ──────────────────────────────────────────────────────────────────────────────

func TestPlaceUseCase(t *testing.T) {
	s := memory.NewStore()
	uc := usecase.NewPlaceUseCase(s.Repos().Places)
	ctx := context.Background()

	p, err := uc.Create(ctx, team, dto.CreatePlaceRequest{Name: " Feria ", Currency: "cop"})
	require.NoError(t, err)
	assert.Equal(t, "Feria", p.Name)
	assert.Equal(t, "COP", p.Currency)
	assert.True(t, p.Active)

	_, err = uc.Create(ctx, team, dto.CreatePlaceRequest{Name: "X", Currency: "ZZZ"})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "currency", ve.Field)

	inactive := false
	cur := "usd"
	upd, err := uc.Update(ctx, team, p.ID, dto.UpdatePlaceRequest{Active: &inactive, Currency: &cur})
	require.NoError(t, err)
	assert.False(t, upd.Active)
	assert.Equal(t, "USD", upd.Currency)

	_, err = uc.GetByID(ctx, "otro", p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := uc.List(ctx, team, 10, 0)
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Grupos
// ──────────────────────────────────────────────────────────────────────────────

func TestGroupUseCase_BodegaYLugar(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	ledger := stock.NewLedgerUseCase(memory.NewTxRunner(s), s.Repos(), logger.Nop())
	require.NoError(t, s.Repos().Places.Create(ctx, &entity.Place{ID: "pl-1", TeamID: team, Name: "Tienda", Currency: "EUR", Active: true, CreatedAt: time.Now()}))

	box, err := ledger.SubmitBox(ctx, team, "u", dto.BoxRequest{
		BaseName: "Zapato", Color: "Negro", MeasurementType: "PCS", Price: decimal.NewFromInt(50),
		Sizes: []dto.BoxSizeRequest{
			{Size: "42", Quantity: decimal.NewFromInt(2)},
			{Size: "38", Quantity: decimal.NewFromInt(3)},
			{Size: "40", Quantity: decimal.NewFromInt(1)},
		},
	})
	require.NoError(t, err)
	items := usecase.NewItemUseCase(memory.NewTxRunner(s), s.Repos(), logger.Nop())
	createItem(t, items, "Cinturón", "")

	groups, err := usecase.NewGroupUseCase(s.Repos()).WarehouseGroups(ctx, team, true)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "Cinturón", groups[0].Label)
	assert.False(t, groups[0].IsBox)

	z := groups[1]
	assert.True(t, z.IsBox)
	assert.Equal(t, 3, z.VariantCount)
	assert.Equal(t, int64(6), z.TotalStock)
	assert.Equal(t, []string{"38", "40", "42"}, []string{z.Variants[0].Size, z.Variants[1].Size, z.Variants[2].Size})

	_, err = ledger.Allocate(ctx, team, "u", "pl-1", dto.AllocateRequest{ItemID: box.Items[0].Item.ID, Quantity: decimal.NewFromInt(2)})
	require.NoError(t, err)
	placeGroups, err := usecase.NewGroupUseCase(s.Repos()).PlaceGroups(ctx, team, "pl-1")
	require.NoError(t, err)
	require.Len(t, placeGroups, 1)
	assert.False(t, placeGroups[0].IsBox)
	assert.Equal(t, int64(2), placeGroups[0].TotalStock)
	assert.Equal(t, "42", placeGroups[0].Variants[0].Size)
}
