package entity

import "time"

// Tipos de movimiento del libro de stock.
const (
	MovementAllocate   = "ALLOCATE"   // bodega -> lugar
	MovementDeallocate = "DEALLOCATE" // retiro del lugar, no vuelve a bodega
	MovementAdjust     = "ADJUST"     // corrección manual de bodega
	MovementBoxIn      = "BOX_IN"     // ingreso por caja de tallas
	MovementSale       = "SALE"       // venta desde la asignación del lugar
	MovementRefund     = "REFUND"     // devolución a la asignación del lugar
)

// StockMovement entrada del libro de auditoría. Cada mutación de bodega o asignación
// escribe una en la misma transacción.
type StockMovement struct {
	ID              string
	TeamID          string
	ItemID          string
	PlaceID         string // vacío si solo toca bodega
	Type            string
	WarehouseDelta  int64
	AllocationDelta int64
	ReferenceID     string // recibo, caja, etc.
	Reason          string
	CreatedBy       string // UserID
	CreatedAt       time.Time
}

// Movimientos de catálogo: dejan rastro de quién retiró un artículo de la venta.
const (
	MovementDeactivate = "DEACTIVATE"
	MovementDelete     = "DELETE"
)
