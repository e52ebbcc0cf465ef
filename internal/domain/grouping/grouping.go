// Package grouping agrupa artículos que comparten nombre base y color en "cajas" con
// variantes de talla. Es una proyección pura: se recalcula en cada lectura y el resultado
// no depende del orden de entrada.
package grouping

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/domain/measure"
)

// Separator separa el nombre base de la talla en el nombre de un artículo.
const Separator = " - "

// Member artículo de entrada con la cantidad del alcance (bodega o lugar).
type Member struct {
	ItemID          string
	Name            string
	SKU             string
	Color           string
	Size            string
	Price           decimal.Decimal
	TaxRateBps      int
	MeasurementType measure.Type
	Stock           int64
}

// Variant miembro de un grupo con su talla inferida.
type Variant struct {
	Member
	SizeToken string
}

// Group caja (o artículo suelto si tiene un solo miembro).
type Group struct {
	Key             string
	Label           string
	Color           string
	Price           decimal.Decimal
	TaxRateBps      int
	MeasurementType measure.Type
	TotalStock      int64
	Variants        []Variant
}

// IsBox indica si el grupo se presenta como caja (dos o más variantes).
func (g Group) IsBox() bool { return len(g.Variants) >= 2 }

// VariantCount cantidad de variantes del grupo.
func (g Group) VariantCount() int { return len(g.Variants) }

// FromItem construye un miembro con el stock de bodega del artículo.
func FromItem(it *entity.Item) Member {
	return Member{
		ItemID:          it.ID,
		Name:            it.Name,
		SKU:             it.SKU,
		Color:           it.Color,
		Size:            it.Size,
		Price:           it.Price,
		TaxRateBps:      it.TaxRateBps,
		MeasurementType: it.MeasurementType,
		Stock:           it.WarehouseStock,
	}
}

// FromAllocation construye un miembro con la cantidad asignada al lugar.
func FromAllocation(a *entity.AllocatedItem) Member {
	m := FromItem(&a.Item)
	m.Stock = a.Allocation.AllocatedQuantity
	return m
}

// BaseName parte del nombre anterior al primer " - " (o el nombre completo).
func BaseName(name string) string {
	if i := strings.Index(name, Separator); i >= 0 {
		return strings.TrimSpace(name[:i])
	}
	return strings.TrimSpace(name)
}

// Key clave de agrupación: nombre base y color en minúsculas.
func Key(name, color string) string {
	return strings.ToLower(BaseName(name)) + "|" + strings.ToLower(strings.TrimSpace(color))
}

// SizeToken talla del artículo: el campo Size si existe, si no el sufijo tras el primer " - ".
func SizeToken(m Member) string {
	if s := strings.TrimSpace(m.Size); s != "" {
		return s
	}
	if i := strings.Index(m.Name, Separator); i >= 0 {
		return strings.TrimSpace(m.Name[i+len(Separator):])
	}
	return ""
}

// Build agrupa los miembros. Los grupos salen ordenados por clave y las variantes por el
// comparador de tallas; el representante de cada grupo es su primera variante ya ordenada.
func Build(members []Member) []Group {
	byKey := make(map[string][]Variant)
	for _, m := range members {
		k := Key(m.Name, m.Color)
		byKey[k] = append(byKey[k], Variant{Member: m, SizeToken: SizeToken(m)})
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	groups := make([]Group, 0, len(keys))
	for _, k := range keys {
		variants := byKey[k]
		sort.SliceStable(variants, func(i, j int) bool { return lessVariant(variants[i], variants[j]) })

		rep := variants[0]
		g := Group{
			Key:             k,
			Label:           BaseName(rep.Name),
			Color:           strings.TrimSpace(rep.Color),
			Price:           rep.Price,
			TaxRateBps:      rep.TaxRateBps,
			MeasurementType: rep.MeasurementType,
			Variants:        variants,
		}
		for _, v := range variants {
			g.TotalStock += v.Stock
		}
		groups = append(groups, g)
	}
	return groups
}

// CompareSizes tallas numéricas ascendentes antes que las no numéricas; éstas en orden lexicográfico.
// Devuelve -1, 0 o 1.
func CompareSizes(a, b string) int {
	na, aNum := parseSize(a)
	nb, bNum := parseSize(b)
	switch {
	case aNum && bNum:
		if c := na.Cmp(nb); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	case aNum:
		return -1
	case bNum:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

func lessVariant(a, b Variant) bool {
	if c := CompareSizes(a.SizeToken, b.SizeToken); c != 0 {
		return c < 0
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.ItemID < b.ItemID
}

func parseSize(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
