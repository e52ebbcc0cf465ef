package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateItemRequest entrada para crear un artículo. El stock entra por caja o ajuste.
type CreateItemRequest struct {
	Name            string           `json:"name" validate:"required,min=1,max=200"`
	SKU             string           `json:"sku" validate:"max=100"`
	CategoryID      string           `json:"categoryId" validate:"max=64"`
	MeasurementType string           `json:"measurementType" validate:"required"`
	Price           decimal.Decimal  `json:"price"`
	CostPrice       *decimal.Decimal `json:"costPrice,omitempty"`
	TaxRateBps      int              `json:"taxRateBps" validate:"min=0,max=10000"`
	Color           string           `json:"color" validate:"max=50"`
	Size            string           `json:"size" validate:"max=50"`
	Brand           string           `json:"brand" validate:"max=100"`
	Tags            []string         `json:"tags" validate:"max=20,dive,min=1,max=50"`
	ImageURL        string           `json:"imageUrl" validate:"omitempty,url,max=500"`
}

// UpdateItemRequest entrada para actualizar un artículo (sin stock).
type UpdateItemRequest struct {
	Name       *string          `json:"name" validate:"omitempty,min=1,max=200"`
	SKU        *string          `json:"sku" validate:"omitempty,max=100"`
	CategoryID *string          `json:"categoryId" validate:"omitempty,max=64"`
	Price      *decimal.Decimal `json:"price"`
	CostPrice  *decimal.Decimal `json:"costPrice"`
	TaxRateBps *int             `json:"taxRateBps" validate:"omitempty,min=0,max=10000"`
	Active     *bool            `json:"active"`
	Color      *string          `json:"color" validate:"omitempty,max=50"`
	Size       *string          `json:"size" validate:"omitempty,max=50"`
	Brand      *string          `json:"brand" validate:"omitempty,max=100"`
	Tags       []string         `json:"tags" validate:"omitempty,max=20,dive,min=1,max=50"`
	ImageURL   *string          `json:"imageUrl" validate:"omitempty,max=500"`
}

// ItemResponse salida de un artículo.
type ItemResponse struct {
	ID                  string           `json:"id"`
	TeamID              string           `json:"teamId"`
	Name                string           `json:"name"`
	SKU                 string           `json:"sku,omitempty"`
	CategoryID          string           `json:"categoryId,omitempty"`
	MeasurementType     string           `json:"measurementType"`
	Unit                string           `json:"unit"` // unidad en la que se cotiza el precio
	Price               decimal.Decimal  `json:"price"`
	CostPrice           *decimal.Decimal `json:"costPrice,omitempty"`
	TaxRateBps          int              `json:"taxRateBps"`
	Active              bool             `json:"active"`
	Color               string           `json:"color,omitempty"`
	Size                string           `json:"size,omitempty"`
	Brand               string           `json:"brand,omitempty"`
	Tags                []string         `json:"tags,omitempty"`
	ImageURL            string           `json:"imageUrl,omitempty"`
	WarehouseStock      int64            `json:"warehouseStock"`
	WarehouseStockLabel string           `json:"warehouseStockLabel"`
	CreatedAt           time.Time        `json:"createdAt"`
	UpdatedAt           time.Time        `json:"updatedAt"`
}

// ItemListResponse lista paginada de artículos.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// AdjustStockRequest corrección manual del stock de bodega. Delta con signo.
type AdjustStockRequest struct {
	Delta  decimal.Decimal `json:"delta"`
	Unit   string          `json:"unit"`
	Reason string          `json:"reason" validate:"max=200"`
}

// BoxRequest alta o recarga de una caja de tallas.
type BoxRequest struct {
	BaseName        string           `json:"baseName" validate:"required,min=1,max=150"`
	Color           string           `json:"color" validate:"max=50"`
	Price           decimal.Decimal  `json:"price"`
	CostPrice       *decimal.Decimal `json:"costPrice,omitempty"`
	TaxRateBps      int              `json:"taxRateBps" validate:"min=0,max=10000"`
	MeasurementType string           `json:"measurementType" validate:"required"`
	SkuPrefix       string           `json:"skuPrefix" validate:"max=50"`
	CategoryID      string           `json:"categoryId" validate:"max=64"`
	Brand           string           `json:"brand" validate:"max=100"`
	Tags            []string         `json:"tags" validate:"max=20,dive,min=1,max=50"`
	ImageURL        string           `json:"imageUrl" validate:"omitempty,url,max=500"`
	Unit            string           `json:"unit"` // unidad de las cantidades; vacío = canónica
	Sizes           []BoxSizeRequest `json:"sizes" validate:"required,min=1,max=100,dive"`
}

// BoxSizeRequest fila (talla, cantidad) de una caja.
type BoxSizeRequest struct {
	Size     string          `json:"size" validate:"required,min=1,max=50"`
	Quantity decimal.Decimal `json:"quantity"`
	SKU      string          `json:"sku" validate:"max=100"`
}

// BoxItemResult resultado por talla.
type BoxItemResult struct {
	Item    ItemResponse `json:"item"`
	Created bool         `json:"created"`
	Added   int64        `json:"added"`
}

// BoxResponse salida de POST /api/items/box.
type BoxResponse struct {
	BaseName string          `json:"baseName"`
	Color    string          `json:"color,omitempty"`
	Items    []BoxItemResult `json:"items"`
}

// MovementResponse entrada del libro de stock.
type MovementResponse struct {
	ID              string    `json:"id"`
	ItemID          string    `json:"itemId"`
	PlaceID         string    `json:"placeId,omitempty"`
	Type            string    `json:"type"`
	WarehouseDelta  int64     `json:"warehouseDelta"`
	AllocationDelta int64     `json:"allocationDelta"`
	ReferenceID     string    `json:"referenceId,omitempty"`
	Reason          string    `json:"reason,omitempty"`
	CreatedBy       string    `json:"createdBy,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
