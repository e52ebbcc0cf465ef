package dto

import (
	"github.com/shopspring/decimal"
)

// AllocateRequest body para POST /api/places/:placeId/items.
// Sin unit, quantity ya viene en unidades canónicas.
type AllocateRequest struct {
	ItemID   string          `json:"itemId" validate:"required"`
	Quantity decimal.Decimal `json:"quantity"`
	Unit     string          `json:"unit"`
}

// DeallocateRequest body para DELETE /api/places/:placeId/items.
type DeallocateRequest struct {
	ItemID string `json:"itemId" validate:"required"`
}

// AllocationItem datos del artículo dentro de la vista por lugar.
type AllocationItem struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	SKU             string          `json:"sku,omitempty"`
	Price           decimal.Decimal `json:"price"`
	TaxRateBps      int             `json:"taxRateBps"`
	MeasurementType string          `json:"measurementType"`
	Color           string          `json:"color,omitempty"`
	Size            string          `json:"size,omitempty"`
	Unit            string          `json:"unit"`
	Active          bool            `json:"active"`
	StockQuantity   int64           `json:"stockQuantity"` // stock de bodega
}

// AllocationResponse asignación de un artículo a un lugar.
type AllocationResponse struct {
	ID            string         `json:"id"`
	PlaceID       string         `json:"placeId"`
	ItemID        string         `json:"itemId"`
	Quantity      int64          `json:"quantity"`
	QuantityLabel string         `json:"quantityLabel"`
	Item          AllocationItem `json:"item"`
}

// GroupVariantResponse variante dentro de un grupo.
type GroupVariantResponse struct {
	ItemID     string `json:"itemId"`
	Name       string `json:"name"`
	SKU        string `json:"sku,omitempty"`
	Size       string `json:"size"`
	Stock      int64  `json:"stock"`
	StockLabel string `json:"stockLabel"`
}

// GroupResponse caja o artículo suelto.
type GroupResponse struct {
	Key             string                 `json:"key"`
	Label           string                 `json:"label"`
	Color           string                 `json:"color,omitempty"`
	Price           decimal.Decimal        `json:"price"`
	TaxRateBps      int                    `json:"taxRateBps"`
	MeasurementType string                 `json:"measurementType"`
	TotalStock      int64                  `json:"totalStock"`
	TotalStockLabel string                 `json:"totalStockLabel"`
	IsBox           bool                   `json:"isBox"`
	VariantCount    int                    `json:"variantCount"`
	Variants        []GroupVariantResponse `json:"variants"`
}
