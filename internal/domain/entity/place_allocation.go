package entity

import "time"

// PlaceAllocation cantidad canónica de un artículo asignada a un lugar para la venta.
// Puede quedar en 0 (agotado) sin perder la fila.
type PlaceAllocation struct {
	ID                string
	PlaceID           string
	ItemID            string
	AllocatedQuantity int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// AllocatedItem asignación unida con los datos del artículo (vista por lugar).
type AllocatedItem struct {
	Allocation PlaceAllocation
	Item       Item
}
