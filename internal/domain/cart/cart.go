// Package cart acumula líneas de venta pedidas contra las asignaciones de un lugar.
// El carrito no reserva stock: solo el cobro toca el libro de stock, y el cobro vuelve a
// calcular precios e impuestos por su cuenta.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/puntoventa-api/internal/domain"
	"github.com/jhoicas/puntoventa-api/internal/domain/measure"
	"github.com/jhoicas/puntoventa-api/internal/domain/pricing"
)

// Variant datos del artículo necesarios para agregarlo al carrito.
type Variant struct {
	ItemID          string
	Name            string
	Price           decimal.Decimal // por unidad grande
	TaxRateBps      int
	MeasurementType measure.Type
}

// Line línea pedida; Quantity en unidades canónicas.
type Line struct {
	ItemID           string
	Name             string
	Quantity         int64
	UnitDisplayPrice decimal.Decimal
	TaxRateBps       int
	MeasurementType  measure.Type
}

// PricedLine línea con su subtotal e impuesto.
type PricedLine struct {
	Line
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
}

// Summary totales corrientes del carrito.
type Summary struct {
	Lines []PricedLine
	Total decimal.Decimal
	Tax   decimal.Decimal
}

// Intent intención de venta que se envía al cobro.
type Intent struct {
	ItemID   string
	Quantity int64
}

// Cart carrito de un único lugar activo.
type Cart struct {
	placeID string
	lines   map[string]*Line
	order   []string
}

// New crea un carrito vacío para el lugar.
func New(placeID string) *Cart {
	return &Cart{placeID: placeID, lines: make(map[string]*Line)}
}

// PlaceID lugar al que pertenece el carrito.
func (c *Cart) PlaceID() string { return c.placeID }

// Len cantidad de líneas.
func (c *Cart) Len() int { return len(c.order) }

// Quantity cantidad canónica ya pedida del artículo.
func (c *Cart) Quantity(itemID string) int64 {
	if l, ok := c.lines[itemID]; ok {
		return l.Quantity
	}
	return 0
}

// Add agrega una variante recortando lo pedido a lo que queda de la asignación:
// min(requested, allocated − yaEnCarrito). Devuelve la cantidad efectivamente agregada,
// que puede ser menor a la pedida (o cero) sin que eso sea un error.
func (c *Cart) Add(v Variant, allocated, requested int64) (int64, error) {
	if requested < 0 {
		return 0, domain.NewValidationError("quantity", "la cantidad no puede ser negativa")
	}
	room := allocated - c.Quantity(v.ItemID)
	if room <= 0 || requested == 0 {
		return 0, nil
	}
	added := requested
	if added > room {
		added = room
	}

	l, ok := c.lines[v.ItemID]
	if !ok {
		l = &Line{ItemID: v.ItemID}
		c.lines[v.ItemID] = l
		c.order = append(c.order, v.ItemID)
	}
	l.Name = v.Name
	l.UnitDisplayPrice = v.Price
	l.TaxRateBps = v.TaxRateBps
	l.MeasurementType = v.MeasurementType
	l.Quantity += added
	return added, nil
}

// CanonicalFor convierte una cantidad de presentación a unidades canónicas con las reglas del
// carrito: LENGTH admite metros fraccionarios con hasta dos decimales (se redondean a
// centímetros) y unidad vacía en LENGTH significa metros; en el resto, vacío es la unidad canónica.
func CanonicalFor(t measure.Type, value decimal.Decimal, unit measure.Unit) (int64, error) {
	if t == measure.LENGTH {
		if unit == "" {
			unit = measure.Meter
		}
		if !value.Round(2).Equal(value) {
			return 0, domain.NewValidationError("quantity", "la longitud admite como máximo dos decimales")
		}
	}
	return measure.ToCanonical(t, value, unit)
}

// AddDisplay convierte con CanonicalFor y agrega con Add.
func (c *Cart) AddDisplay(v Variant, allocated int64, value decimal.Decimal, unit measure.Unit) (int64, error) {
	canonical, err := CanonicalFor(v.MeasurementType, value, unit)
	if err != nil {
		return 0, err
	}
	return c.Add(v, allocated, canonical)
}

// Remove quita la línea del artículo.
func (c *Cart) Remove(itemID string) {
	if _, ok := c.lines[itemID]; !ok {
		return
	}
	delete(c.lines, itemID)
	for i, id := range c.order {
		if id == itemID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Clear descarta todas las líneas sin contactar el libro de stock.
func (c *Cart) Clear() {
	c.lines = make(map[string]*Line)
	c.order = nil
}

// Lines copia de las líneas en orden de inserción.
func (c *Cart) Lines() []Line {
	out := make([]Line, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.lines[id])
	}
	return out
}

// Totals subtotales por línea con la misma fórmula que usa el cobro.
func (c *Cart) Totals() Summary {
	s := Summary{Total: decimal.Zero, Tax: decimal.Zero}
	priced := make([]pricing.Line, 0, len(c.order))
	for _, l := range c.Lines() {
		pl := pricing.Compute(l.UnitDisplayPrice, l.Quantity, l.MeasurementType, l.TaxRateBps)
		s.Lines = append(s.Lines, PricedLine{Line: l, Subtotal: pl.Total, Tax: pl.Tax})
		priced = append(priced, pl)
	}
	t := pricing.Sum(priced...)
	s.Total, s.Tax = t.Total, t.Tax
	return s
}

// Intents líneas listas para enviar al cobro.
func (c *Cart) Intents() []Intent {
	out := make([]Intent, 0, len(c.order))
	for _, l := range c.Lines() {
		out = append(out, Intent{ItemID: l.ItemID, Quantity: l.Quantity})
	}
	return out
}
