package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/puntoventa-api/internal/application/analytics"
	"github.com/jhoicas/puntoventa-api/internal/domain"
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/domain/measure"
	"github.com/jhoicas/puntoventa-api/internal/infrastructure/memory"
)

var day = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func receipt(id string, at time.Duration, method entity.PaymentMethod, lines ...entity.ReceiptLineItem) *entity.Receipt {
	rc := &entity.Receipt{
		ID:            id,
		TeamID:        "team",
		PlaceID:       "pl-1",
		PaymentMethod: method,
		Currency:      "EUR",
		CreatedAt:     day.Add(at),
		Lines:         lines,
	}
	for _, l := range lines {
		rc.TotalAmount = rc.TotalAmount.Add(l.LineTotal)
		rc.TaxAmount = rc.TaxAmount.Add(l.LineTax)
	}
	return rc
}

func line(itemID, name string, qty int64, total, tax string) entity.ReceiptLineItem {
	return entity.ReceiptLineItem{
		ItemID: itemID, ItemName: name, Quantity: qty, MeasurementType: measure.PCS,
		LineTotal: decimal.RequireFromString(total), LineTax: decimal.RequireFromString(tax),
	}
}

func seed(t *testing.T) *analytics.SummaryUseCase {
	t.Helper()
	s := memory.NewStore()
	ctx := context.Background()
	repos := s.Repos()
	require.NoError(t, repos.Places.Create(ctx, &entity.Place{ID: "pl-1", TeamID: "team", Name: "Centro", Currency: "EUR", Active: true}))

	for _, rc := range []*entity.Receipt{
		receipt("r1", 9*time.Hour, entity.PaymentCash, line("cam", "Camiseta - M", 2, "20.00", "3.47")),
		receipt("r2", 10*time.Hour, entity.PaymentCard, line("gor", "Gorra", 1, "15.00", "2.60"), line("cam", "Camiseta - M", 1, "10.00", "1.74")),
		receipt("r3", 11*time.Hour, entity.PaymentRefund, line("cam", "Camiseta - M", 1, "-10.00", "-1.74")),
		receipt("r4", 30*time.Hour, entity.PaymentCash, line("gor", "Gorra", 5, "75.00", "13.02")), // día siguiente
	} {
		require.NoError(t, repos.Receipts.Create(ctx, rc))
	}
	return analytics.NewSummaryUseCase(repos)
}

func TestGetSummary_TotalesDelDia(t *testing.T) {
	uc := seed(t)
	out, err := uc.GetSummary(context.Background(), "team", "pl-1", day, day.Add(24*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 3, out.ReceiptCount)
	assert.True(t, out.Sales.Equal(decimal.RequireFromString("45")), "ventas %s", out.Sales)
	assert.True(t, out.Refunds.Equal(decimal.RequireFromString("-10")), "devoluciones %s", out.Refunds)
	assert.True(t, out.Net.Equal(decimal.RequireFromString("35")), "neto %s", out.Net)
	assert.True(t, out.Tax.Equal(decimal.RequireFromString("6.07")), "impuesto %s", out.Tax)

	require.Len(t, out.ByPayment, 3)
	assert.Equal(t, "CASH", out.ByPayment[0].PaymentOption)
	assert.Equal(t, 1, out.ByPayment[0].Count)
	assert.Equal(t, 1, out.ByPayment[2].Count, "una devolución")

	require.Len(t, out.TopItems, 2)
	assert.Equal(t, "cam", out.TopItems[0].ItemID, "20 netos frente a 15")
	assert.Equal(t, int64(2), out.TopItems[0].Quantity, "3 vendidas menos 1 devuelta")
	assert.Equal(t, "2 pcs", out.TopItems[0].QuantityLabel)
}

func TestGetSummary_Validaciones(t *testing.T) {
	uc := seed(t)
	ctx := context.Background()

	_, err := uc.GetSummary(ctx, "team", "pl-1", day, day)
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "to", vErr.Field)

	_, err = uc.GetSummary(ctx, "team", "pl-1", day, day.AddDate(2, 0, 0))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.GetSummary(ctx, "otro", "pl-1", day, day.Add(time.Hour))
	assert.ErrorIs(t, err, domain.ErrNotFound, "lugar de otro equipo")
}

func TestGetSummary_SinRecibos(t *testing.T) {
	uc := seed(t)
	out, err := uc.GetSummary(context.Background(), "team", "pl-1", day.AddDate(0, 1, 0), day.AddDate(0, 1, 1))
	require.NoError(t, err)
	assert.Zero(t, out.ReceiptCount)
	assert.True(t, out.Net.IsZero())
	assert.Empty(t, out.TopItems)
	assert.Len(t, out.ByPayment, 3)
}
