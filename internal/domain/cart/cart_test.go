package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/puntoventa-api/internal/domain"
	"github.com/jhoicas/puntoventa-api/internal/domain/measure"
)

func camiseta() Variant {
	return Variant{ItemID: "it-1", Name: "Camiseta - M", Price: decimal.RequireFromString("10.00"), TaxRateBps: 2100, MeasurementType: measure.PCS}
}

func cable() Variant {
	return Variant{ItemID: "it-2", Name: "Cable", Price: decimal.RequireFromString("3.00"), TaxRateBps: 0, MeasurementType: measure.LENGTH}
}

func TestAdd_RecortaALaAsignacion(t *testing.T) {
	c := New("pl-1")

	added, err := c.Add(camiseta(), 5, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), added)

	// Quedan 2 de lugar: pedir 4 agrega solo 2, sin error.
	added, err = c.Add(camiseta(), 5, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(2), added)
	assert.Equal(t, int64(5), c.Quantity("it-1"))

	// Sin lugar: no agrega nada.
	added, err = c.Add(camiseta(), 5, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), added)
	assert.Equal(t, 1, c.Len())
}

func TestAdd_SinAsignacionNoCreaLinea(t *testing.T) {
	c := New("pl-1")
	added, err := c.Add(camiseta(), 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(0), added)
	assert.Equal(t, 0, c.Len())
}

func TestAdd_NegativoEsInvalido(t *testing.T) {
	c := New("pl-1")
	_, err := c.Add(camiseta(), 5, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAddDisplay_LongitudFraccionaria(t *testing.T) {
	c := New("pl-1")

	added, err := c.AddDisplay(cable(), 1000, decimal.RequireFromString("1.25"), "")
	require.NoError(t, err)
	assert.Equal(t, int64(125), added, "1.25 m se guarda como 125 cm")

	_, err = c.AddDisplay(cable(), 1000, decimal.RequireFromString("1.255"), measure.Meter)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "más de dos decimales")
}

func TestAddDisplay_PiezasFraccionariasRechazadas(t *testing.T) {
	c := New("pl-1")
	_, err := c.AddDisplay(camiseta(), 5, decimal.RequireFromString("1.5"), measure.Piece)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTotals_UsaPrecioPorUnidadGrande(t *testing.T) {
	c := New("pl-1")
	_, err := c.Add(camiseta(), 5, 2)
	require.NoError(t, err)
	_, err = c.AddDisplay(cable(), 1000, decimal.RequireFromString("1.25"), measure.Meter)
	require.NoError(t, err)

	s := c.Totals()
	require.Len(t, s.Lines, 2)
	assert.Equal(t, "20.00", s.Lines[0].Subtotal.StringFixed(2))
	assert.Equal(t, "4.20", s.Lines[0].Tax.StringFixed(2))
	assert.Equal(t, "3.75", s.Lines[1].Subtotal.StringFixed(2))
	assert.Equal(t, "23.75", s.Total.StringFixed(2))
	assert.Equal(t, "4.20", s.Tax.StringFixed(2))

	assert.Equal(t, []Intent{{ItemID: "it-1", Quantity: 2}, {ItemID: "it-2", Quantity: 125}}, c.Intents())
}

func TestRemoveYClear(t *testing.T) {
	c := New("pl-1")
	_, _ = c.Add(camiseta(), 5, 2)
	_, _ = c.Add(cable(), 500, 100)

	c.Remove("it-1")
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, "it-2", c.Lines()[0].ItemID)

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.True(t, c.Totals().Total.IsZero())
	assert.Equal(t, "pl-1", c.PlaceID())
}
