package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/puntoventa-api/internal/domain/measure"
)

// Item representa un artículo del catálogo de un equipo.
// WarehouseStock es la cantidad canónica en bodega central aún no asignada a ningún lugar.
type Item struct {
	ID              string
	TeamID          string
	Name            string
	SKU             string // opcional, único por equipo
	CategoryID      string
	MeasurementType measure.Type
	Price           decimal.Decimal  // por unidad grande de presentación (kg, m, pieza...)
	CostPrice       *decimal.Decimal // opcional
	TaxRateBps      int              // 0..10000
	Active          bool
	Color           string
	Size            string
	Brand           string
	Tags            []string
	ImageURL        string
	WarehouseStock  int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Clone copia profunda (tags y costo).
func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	c := *i
	if i.Tags != nil {
		c.Tags = append([]string(nil), i.Tags...)
	}
	if i.CostPrice != nil {
		cp := *i.CostPrice
		c.CostPrice = &cp
	}
	return &c
}
