package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/puntoventa-api/internal/domain"
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/domain/measure"
	"github.com/jhoicas/puntoventa-api/internal/domain/repository"
)

func seed(t *testing.T, s *Store) (*entity.Item, *entity.Place) {
	t.Helper()
	ctx := context.Background()
	now := time.Now()
	it := &entity.Item{ID: "it-1", TeamID: "team", Name: "Camiseta - M", MeasurementType: measure.PCS,
		Price: decimal.NewFromInt(10), Active: true, WarehouseStock: 10, CreatedAt: now, UpdatedAt: now}
	pl := &entity.Place{ID: "pl-1", TeamID: "team", Name: "Tienda", Currency: "EUR", Active: true, CreatedAt: now}
	require.NoError(t, s.Repos().Items.Create(ctx, it))
	require.NoError(t, s.Repos().Places.Create(ctx, pl))
	return it, pl
}

func TestTxRunner_RollbackDescartaCambios(t *testing.T) {
	s := NewStore()
	seed(t, s)
	runner := NewTxRunner(s)
	boom := errors.New("boom")

	err := runner.Run(context.Background(), func(r repository.TxRepos) error {
		require.NoError(t, r.Items.SetWarehouseStock(context.Background(), "it-1", 3))
		a, err := r.Allocations.EnsureForUpdate(context.Background(), "pl-1", "it-1")
		require.NoError(t, err)
		require.NoError(t, r.Allocations.SetQuantity(context.Background(), a.ID, 7))
		return boom
	})
	require.ErrorIs(t, err, boom)

	it, err := s.Repos().Items.GetByID(context.Background(), "it-1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), it.WarehouseStock, "el stock no debe cambiar tras rollback")

	a, err := s.Repos().Allocations.GetForUpdate(context.Background(), "pl-1", "it-1")
	require.NoError(t, err)
	assert.Nil(t, a, "la asignación creada en la tx fallida no debe existir")
}

func TestTxRunner_CommitAplicaCambios(t *testing.T) {
	s := NewStore()
	seed(t, s)
	runner := NewTxRunner(s)

	err := runner.Run(context.Background(), func(r repository.TxRepos) error {
		return r.Items.SetWarehouseStock(context.Background(), "it-1", 4)
	})
	require.NoError(t, err)

	it, _ := s.Repos().Items.GetByID(context.Background(), "it-1")
	assert.Equal(t, int64(4), it.WarehouseStock)
}

func TestTxRunner_ContextoCancelado(t *testing.T) {
	s := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := NewTxRunner(s).Run(ctx, func(repository.TxRepos) error { called = true; return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestItemRepo_RestriccionesUnicas(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	items := s.Repos().Items

	require.NoError(t, items.Create(ctx, &entity.Item{ID: "a", TeamID: "team", Name: "Gorra", SKU: "G-1"}))
	assert.ErrorIs(t, items.Create(ctx, &entity.Item{ID: "b", TeamID: "team", Name: "Otra", SKU: "G-1"}), domain.ErrDuplicate)
	assert.ErrorIs(t, items.Create(ctx, &entity.Item{ID: "c", TeamID: "team", Name: "gorra", SKU: "G-1"}), domain.ErrDuplicate)
	assert.NoError(t, items.Create(ctx, &entity.Item{ID: "d", TeamID: "otro", Name: "Gorra", SKU: "G-1"}), "otro equipo")
	assert.NoError(t, items.Create(ctx, &entity.Item{ID: "e", TeamID: "team", Name: "Gorra", Color: "Azul"}), "distinto color")
}

func TestItemRepo_DeleteConReferencias(t *testing.T) {
	s := NewStore()
	seed(t, s)
	ctx := context.Background()

	_, err := s.Repos().Allocations.EnsureForUpdate(ctx, "pl-1", "it-1")
	require.NoError(t, err)

	assert.ErrorIs(t, s.Repos().Items.Delete(ctx, "it-1"), domain.ErrConflict)

	_, err = s.Repos().Allocations.Delete(ctx, "pl-1", "it-1")
	require.NoError(t, err)
	assert.NoError(t, s.Repos().Items.Delete(ctx, "it-1"))
	assert.ErrorIs(t, s.Repos().Items.Delete(ctx, "it-1"), domain.ErrNotFound)
}

func TestReceiptRepo_ListByPlacePaginado(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"r1", "r2", "r3"} {
		require.NoError(t, s.Repos().Receipts.Create(ctx, &entity.Receipt{
			ID: id, PlaceID: "pl-1", CreatedAt: base.Add(time.Duration(i) * time.Minute),
			Lines: []entity.ReceiptLineItem{{ItemID: "it-1", Quantity: 1}},
		}))
	}

	page, total, err := s.Repos().Receipts.ListByPlace(ctx, "pl-1", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, "r3", page[0].ID, "más recientes primero")
	assert.Equal(t, "r3", page[0].Lines[0].ReceiptID)

	between, err := s.Repos().Receipts.ListByPlaceBetween(ctx, "pl-1", base, base.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Len(t, between, 2)
}
