// Package measure define las unidades canónicas de almacenamiento por tipo de medida
// y la conversión entre unidades canónicas (enteras) y unidades de presentación.
//
// Toda cantidad persistida es un entero no negativo en la unidad canónica del tipo:
// piezas, gramos, centímetros, mililitros, centímetros cuadrados o minutos.
package measure

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/puntoventa-api/internal/domain"
)

// Type tipo de medida de un artículo.
type Type string

const (
	PCS    Type = "PCS"
	WEIGHT Type = "WEIGHT"
	LENGTH Type = "LENGTH"
	VOLUME Type = "VOLUME"
	AREA   Type = "AREA"
	TIME   Type = "TIME"
)

// Unit unidad de presentación o almacenamiento.
type Unit string

const (
	Piece            Unit = "piece"
	Gram             Unit = "gram"
	Kilogram         Unit = "kilogram"
	Centimeter       Unit = "centimeter"
	Meter            Unit = "meter"
	Milliliter       Unit = "milliliter"
	Liter            Unit = "liter"
	SquareCentimeter Unit = "square_centimeter"
	SquareMeter      Unit = "square_meter"
	Minute           Unit = "minute"
	Hour             Unit = "hour"
)

// Quantity valor expresado en una unidad de presentación.
type Quantity struct {
	Value decimal.Decimal
	Unit  Unit
}

type unitSet struct {
	canonical       Unit
	large           Unit
	factor          int64 // unidades canónicas por unidad grande; también es el umbral de cambio
	canonicalSymbol string
	largeSymbol     string
}

var units = map[Type]unitSet{
	PCS:    {canonical: Piece, large: Piece, factor: 1, canonicalSymbol: "pcs", largeSymbol: "pcs"},
	WEIGHT: {canonical: Gram, large: Kilogram, factor: 1000, canonicalSymbol: "g", largeSymbol: "kg"},
	LENGTH: {canonical: Centimeter, large: Meter, factor: 100, canonicalSymbol: "cm", largeSymbol: "m"},
	VOLUME: {canonical: Milliliter, large: Liter, factor: 1000, canonicalSymbol: "ml", largeSymbol: "l"},
	AREA:   {canonical: SquareCentimeter, large: SquareMeter, factor: 10000, canonicalSymbol: "cm²", largeSymbol: "m²"},
	TIME:   {canonical: Minute, large: Hour, factor: 60, canonicalSymbol: "min", largeSymbol: "h"},
}

var unitAliases = map[string]Unit{
	"piece": Piece, "pieces": Piece, "pcs": Piece, "pc": Piece, "unidad": Piece,
	"gram": Gram, "g": Gram,
	"kilogram": Kilogram, "kg": Kilogram,
	"centimeter": Centimeter, "cm": Centimeter,
	"meter": Meter, "m": Meter,
	"milliliter": Milliliter, "ml": Milliliter,
	"liter": Liter, "l": Liter,
	"square_centimeter": SquareCentimeter, "cm2": SquareCentimeter, "cm²": SquareCentimeter,
	"square_meter": SquareMeter, "m2": SquareMeter, "m²": SquareMeter,
	"minute": Minute, "min": Minute,
	"hour": Hour, "h": Hour,
}

// Types devuelve los tipos de medida en orden estable.
func Types() []Type {
	return []Type{PCS, WEIGHT, LENGTH, VOLUME, AREA, TIME}
}

// Valid indica si el tipo es conocido.
func (t Type) Valid() bool {
	_, ok := units[t]
	return ok
}

// ParseType normaliza y valida un tipo de medida ("weight" -> WEIGHT).
func ParseType(s string) (Type, error) {
	t := Type(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", domain.NewValidationError("measurementType", fmt.Sprintf("tipo de medida desconocido %q", s))
	}
	return t, nil
}

// ParseUnit acepta el nombre o el símbolo de la unidad. Vacío devuelve "" sin error.
func ParseUnit(s string) (Unit, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return "", nil
	}
	u, ok := unitAliases[key]
	if !ok {
		return "", domain.NewValidationError("unit", fmt.Sprintf("unidad desconocida %q", s))
	}
	return u, nil
}

// CanonicalUnit unidad de almacenamiento del tipo.
func CanonicalUnit(t Type) Unit { return units[t].canonical }

// LargeUnit unidad de presentación grande del tipo (aquella en la que se cotiza el precio).
func LargeUnit(t Type) Unit { return units[t].large }

// DisplayUnits unidades ofrecidas al usuario para el tipo, de mayor a menor.
func DisplayUnits(t Type) []Unit {
	u, ok := units[t]
	if !ok {
		return nil
	}
	if u.large == u.canonical {
		return []Unit{u.canonical}
	}
	return []Unit{u.large, u.canonical}
}

// CanonicalPerDisplay unidades canónicas por unidad grande (1000 g por kg, 100 cm por m...).
// Para tipos desconocidos devuelve 1.
func CanonicalPerDisplay(t Type) int64 {
	if u, ok := units[t]; ok {
		return u.factor
	}
	return 1
}

// Symbol símbolo corto de una unidad ("kg", "cm²").
func Symbol(unit Unit) string {
	for _, u := range units {
		if u.canonical == unit {
			return u.canonicalSymbol
		}
		if u.large == unit {
			return u.largeSymbol
		}
	}
	return string(unit)
}

func factorOf(t Type, unit Unit) (int64, bool) {
	u, ok := units[t]
	if !ok {
		return 0, false
	}
	switch unit {
	case u.canonical:
		return 1, true
	case u.large:
		return u.factor, true
	default:
		return 0, false
	}
}

var maxCanonical = decimal.NewFromInt(math.MaxInt64)

// ToCanonical convierte un valor de presentación a la unidad canónica del tipo.
// Unidad vacía significa que el valor ya está en unidad canónica. El resultado se trunca
// hacia cero tras absorber el error de representación de divisiones periódicas (p. ej. 1/60 h).
// PCS exige enteros; un valor fraccionario es entrada mal formada.
func ToCanonical(t Type, value decimal.Decimal, unit Unit) (int64, error) {
	if !t.Valid() {
		return 0, domain.NewValidationError("measurementType", fmt.Sprintf("tipo de medida desconocido %q", t))
	}
	if unit == "" {
		unit = units[t].canonical
	}
	factor, ok := factorOf(t, unit)
	if !ok {
		return 0, domain.NewValidationError("unit", fmt.Sprintf("la unidad %s no corresponde al tipo %s", unit, t))
	}
	if value.IsNegative() {
		return 0, domain.NewValidationError("quantity", "la cantidad no puede ser negativa")
	}
	if t == PCS && !value.IsInteger() {
		return 0, domain.NewValidationError("quantity", "las piezas deben ser un número entero")
	}
	canonical := value.Mul(decimal.NewFromInt(factor)).Round(6).Truncate(0)
	if canonical.GreaterThan(maxCanonical) {
		return 0, domain.NewValidationError("quantity", "cantidad fuera de rango")
	}
	return canonical.IntPart(), nil
}

// FromCanonical expresa una cantidad canónica en la unidad grande cuando su magnitud alcanza
// el umbral del tipo (1000 para WEIGHT/VOLUME, 100 para LENGTH, 10000 para AREA, 60 para TIME);
// por debajo se mantiene en la unidad canónica.
func FromCanonical(t Type, canonical int64) Quantity {
	u, ok := units[t]
	if !ok {
		return Quantity{Value: decimal.NewFromInt(canonical)}
	}
	if u.factor > 1 && abs(canonical) >= u.factor {
		return Quantity{
			Value: decimal.NewFromInt(canonical).Div(decimal.NewFromInt(u.factor)),
			Unit:  u.large,
		}
	}
	return Quantity{Value: decimal.NewFromInt(canonical), Unit: u.canonical}
}

// FormatQuantity representa una cantidad canónica para humanos: "999 g", "1.00 kg", "9999 cm²".
// Las cantidades en unidad canónica se muestran enteras; en unidad grande, con dos decimales.
// fallbackUnit es la etiqueta a usar para piezas (o tipos desconocidos); vacío usa "pcs".
func FormatQuantity(t Type, canonical int64, fallbackUnit string) string {
	u, ok := units[t]
	if !ok || t == PCS {
		label := strings.TrimSpace(fallbackUnit)
		if label == "" {
			label = "pcs"
		}
		return fmt.Sprintf("%d %s", canonical, label)
	}
	q := FromCanonical(t, canonical)
	if q.Unit == u.large {
		return q.Value.StringFixed(2) + " " + u.largeSymbol
	}
	return fmt.Sprintf("%d %s", canonical, u.canonicalSymbol)
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
