package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesSummaryResponse respuesta de GET /api/places/:placeId/summary.
type SalesSummaryResponse struct {
	PlaceID      string          `json:"placeId"`
	Currency     string          `json:"currency"`
	From         time.Time       `json:"from"`
	To           time.Time       `json:"to"` // exclusivo
	ReceiptCount int             `json:"receiptCount"`
	Sales        decimal.Decimal `json:"sales"`   // CASH + CARD
	Refunds      decimal.Decimal `json:"refunds"` // negativo o cero
	Net          decimal.Decimal `json:"net"`
	Tax          decimal.Decimal `json:"tax"` // impuesto neto incluido
	ByPayment    []PaymentTotal  `json:"byPayment"`
	TopItems     []TopItem       `json:"topItems"`
}

// PaymentTotal acumulado por forma de pago.
type PaymentTotal struct {
	PaymentOption string          `json:"paymentOption"`
	Count         int             `json:"count"`
	Total         decimal.Decimal `json:"total"`
}

// TopItem artículo más vendido del período (neto de devoluciones).
type TopItem struct {
	ItemID        string          `json:"itemId"`
	Name          string          `json:"name"`
	Quantity      int64           `json:"quantity"`
	QuantityLabel string          `json:"quantityLabel"`
	Revenue       decimal.Decimal `json:"revenue"`
}
