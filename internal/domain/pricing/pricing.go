// Package pricing concentra el cálculo monetario por línea que comparten el carrito y el cobro.
// El precio de un artículo se cotiza por unidad grande de presentación (kg, m, l, m², h, pieza)
// mientras la cantidad viaja en unidades canónicas.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/puntoventa-api/internal/domain/measure"
)

// MaxTaxRateBps 100% expresado en puntos básicos.
const MaxTaxRateBps = 10000

var bpsBase = decimal.NewFromInt(MaxTaxRateBps)

// Line resultado monetario de una línea.
type Line struct {
	Total decimal.Decimal
	Tax   decimal.Decimal
}

// Totals suma de varias líneas.
type Totals struct {
	Total decimal.Decimal
	Tax   decimal.Decimal
}

// LineTotal = unitPrice × (canonicalQty / canonicalPorUnidadGrande), redondeado a centavos.
func LineTotal(unitPrice decimal.Decimal, canonicalQty int64, t measure.Type) decimal.Decimal {
	per := decimal.NewFromInt(measure.CanonicalPerDisplay(t))
	return unitPrice.Mul(decimal.NewFromInt(canonicalQty)).Div(per).Round(2)
}

// LineTax = lineTotal × taxRateBps / 10000, redondeado a centavos.
func LineTax(lineTotal decimal.Decimal, taxRateBps int) decimal.Decimal {
	return lineTotal.Mul(decimal.NewFromInt(int64(taxRateBps))).Div(bpsBase).Round(2)
}

// Compute calcula total e impuesto de una línea.
func Compute(unitPrice decimal.Decimal, canonicalQty int64, t measure.Type, taxRateBps int) Line {
	total := LineTotal(unitPrice, canonicalQty, t)
	return Line{Total: total, Tax: LineTax(total, taxRateBps)}
}

// Negate invierte el signo de la línea (devoluciones).
func (l Line) Negate() Line {
	return Line{Total: l.Total.Neg(), Tax: l.Tax.Neg()}
}

// Sum acumula las líneas en un total.
func Sum(lines ...Line) Totals {
	t := Totals{Total: decimal.Zero, Tax: decimal.Zero}
	for _, l := range lines {
		t.Total = t.Total.Add(l.Total)
		t.Tax = t.Tax.Add(l.Tax)
	}
	return t
}

// ValidTaxRate indica si la tasa está en [0, 10000] bps.
func ValidTaxRate(bps int) bool {
	return bps >= 0 && bps <= MaxTaxRateBps
}
