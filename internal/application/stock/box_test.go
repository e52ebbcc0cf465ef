package stock_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/puntoventa-api/internal/application/dto"
	"github.com/jhoicas/puntoventa-api/internal/domain"
	"github.com/jhoicas/puntoventa-api/internal/domain/repository"
)

func boxRequest(sizes ...dto.BoxSizeRequest) dto.BoxRequest {
	return dto.BoxRequest{
		BaseName:        "Camiseta",
		Color:           "Azul",
		Price:           decimal.RequireFromString("12.50"),
		TaxRateBps:      2100,
		MeasurementType: "PCS",
		SkuPrefix:       "CAM-AZ",
		Sizes:           sizes,
	}
}

func size(s string, q int64) dto.BoxSizeRequest {
	return dto.BoxSizeRequest{Size: s, Quantity: decimal.NewFromInt(q)}
}

func TestSubmitBox_CreaTallasYCantidadCeroEsNoOp(t *testing.T) {
	uc, s := newLedger(t)
	ctx := context.Background()

	out, err := uc.SubmitBox(ctx, team, "u-1", boxRequest(size("S", 10), size("M", 0)))
	require.NoError(t, err)
	require.Len(t, out.Items, 2)

	assert.True(t, out.Items[0].Created)
	assert.Equal(t, "Camiseta - S", out.Items[0].Item.Name)
	assert.Equal(t, "CAM-AZ-S", out.Items[0].Item.SKU)
	assert.Equal(t, int64(10), out.Items[0].Item.WarehouseStock)

	assert.True(t, out.Items[1].Created, "la talla con cantidad 0 igual se crea")
	assert.Equal(t, int64(0), out.Items[1].Item.WarehouseStock)
	assert.Equal(t, int64(0), out.Items[1].Added)

	list, err := s.Repos().Items.List(ctx, team, repository.ItemFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestSubmitBox_RecargaSumaAlExistente(t *testing.T) {
	uc, _ := newLedger(t)
	ctx := context.Background()

	first, err := uc.SubmitBox(ctx, team, "u-1", boxRequest(size("S", 10), size("M", 4)))
	require.NoError(t, err)

	again, err := uc.SubmitBox(ctx, team, "u-1", boxRequest(size("s", 5), size("L", 2)))
	require.NoError(t, err)
	require.Len(t, again.Items, 2)

	assert.False(t, again.Items[0].Created, "la talla existente se busca sin distinguir mayúsculas")
	assert.Equal(t, first.Items[0].Item.ID, again.Items[0].Item.ID)
	assert.Equal(t, int64(15), again.Items[0].Item.WarehouseStock)
	assert.True(t, again.Items[1].Created)
}

func TestSubmitBox_SkuDuplicadoRevierteTodo(t *testing.T) {
	uc, s := newLedger(t)
	ctx := context.Background()

	_, err := uc.SubmitBox(ctx, team, "u-1", boxRequest(size("S", 1)))
	require.NoError(t, err)

	req := boxRequest(size("M", 3), dto.BoxSizeRequest{Size: "L", Quantity: decimal.NewFromInt(2), SKU: "CAM-AZ-S"})
	_, err = uc.SubmitBox(ctx, team, "u-1", req)
	require.ErrorIs(t, err, domain.ErrDuplicate)

	list, err := s.Repos().Items.List(ctx, team, repository.ItemFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1, "la talla M creada antes del fallo no debe persistir")
}

func TestSubmitBox_Validaciones(t *testing.T) {
	uc, _ := newLedger(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		mut   func(*dto.BoxRequest)
		field string
	}{
		{"nombre vacío", func(r *dto.BoxRequest) { r.BaseName = "  " }, "baseName"},
		{"nombre con separador", func(r *dto.BoxRequest) { r.BaseName = "Camiseta - XL" }, "baseName"},
		{"tipo desconocido", func(r *dto.BoxRequest) { r.MeasurementType = "PESO" }, "measurementType"},
		{"precio negativo", func(r *dto.BoxRequest) { r.Price = decimal.NewFromInt(-1) }, "price"},
		{"impuesto fuera de rango", func(r *dto.BoxRequest) { r.TaxRateBps = 10001 }, "taxRateBps"},
		{"sin tallas", func(r *dto.BoxRequest) { r.Sizes = nil }, "sizes"},
		{"talla repetida", func(r *dto.BoxRequest) { r.Sizes = append(r.Sizes, size("s", 1)) }, "sizes[1].size"},
		{"cantidad fraccionaria", func(r *dto.BoxRequest) {
			r.Sizes[0].Quantity = decimal.RequireFromString("1.5")
		}, "sizes[0].quantity"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := boxRequest(size("S", 1))
			tc.mut(&req)
			_, err := uc.SubmitBox(ctx, team, "u-1", req)
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
		})
	}
}

func TestSubmitBox_ConUnidad(t *testing.T) {
	uc, _ := newLedger(t)
	req := boxRequest(dto.BoxSizeRequest{Size: "Ancha", Quantity: decimal.RequireFromString("2.5")})
	req.BaseName = "Cinta"
	req.MeasurementType = "length"
	req.Unit = "m"
	req.SkuPrefix = ""

	out, err := uc.SubmitBox(context.Background(), team, "u-1", req)
	require.NoError(t, err)
	assert.Equal(t, int64(250), out.Items[0].Item.WarehouseStock)
	assert.Equal(t, "2.50 m", out.Items[0].Item.WarehouseStockLabel)
	assert.Empty(t, out.Items[0].Item.SKU)
}

func TestSubmitBox_RecargaPromediaCosto(t *testing.T) {
	uc, s := newLedger(t)
	ctx := context.Background()

	req := boxRequest(size("S", 10))
	cost := decimal.RequireFromString("10.00")
	req.CostPrice = &cost
	first, err := uc.SubmitBox(ctx, team, "u-1", req)
	require.NoError(t, err)

	reload := boxRequest(size("S", 5))
	newCost := decimal.RequireFromString("16.00")
	reload.CostPrice = &newCost
	_, err = uc.SubmitBox(ctx, team, "u-1", reload)
	require.NoError(t, err)

	it, err := s.Repos().Items.GetByID(ctx, first.Items[0].Item.ID)
	require.NoError(t, err)
	require.NotNil(t, it.CostPrice)
	assert.True(t, it.CostPrice.Equal(decimal.NewFromInt(12)), "promedio ponderado, obtenido %s", it.CostPrice)
	assert.Equal(t, int64(15), it.WarehouseStock)
}
