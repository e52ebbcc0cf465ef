package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAverageCost(t *testing.T) {
	d := decimal.RequireFromString
	cur := d("10.00")

	cases := []struct {
		name    string
		current *decimal.Decimal
		stock   int64
		in      decimal.Decimal
		qty     int64
		want    string
	}{
		{"ponderado", &cur, 10, d("16.00"), 5, "12"},
		{"redondea a centavos", &cur, 2, d("11.00"), 1, "10.33"},
		{"sin costo previo", nil, 10, d("7.5"), 3, "7.5"},
		{"sin stock previo", &cur, 0, d("8"), 4, "8"},
		{"entrada vacía", &cur, 5, d("99"), 0, "10"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := AverageCost(tc.current, tc.stock, tc.in, tc.qty)
			assert.True(t, got.Equal(d(tc.want)), "esperado %s, obtenido %s", tc.want, got)
		})
	}
}
