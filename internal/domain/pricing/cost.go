package pricing

import "github.com/shopspring/decimal"

// AverageCost costo promedio ponderado tras una entrada de mercancía:
// ((stock × costo) + (entrada × costoEntrada)) / (stock + entrada), a centavos.
// Sin costo previo, o sin stock previo, el resultado es el costo de la entrada.
func AverageCost(current *decimal.Decimal, stock int64, incoming decimal.Decimal, qty int64) decimal.Decimal {
	if current == nil || stock <= 0 {
		return incoming.Round(2)
	}
	if qty <= 0 {
		return current.Round(2)
	}
	s, q := decimal.NewFromInt(stock), decimal.NewFromInt(qty)
	num := s.Mul(*current).Add(q.Mul(incoming))
	return num.Div(s.Add(q)).Round(2)
}
