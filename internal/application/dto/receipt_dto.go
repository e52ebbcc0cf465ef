package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CheckoutRequest body para POST /api/receipts. Los precios nunca vienen del cliente.
type CheckoutRequest struct {
	PlaceID       string                `json:"placeId" validate:"required"`
	Items         []CheckoutLineRequest `json:"items" validate:"required,min=1,max=200,dive"`
	AmountGiven   *decimal.Decimal      `json:"amountGiven"`
	PaymentOption string                `json:"paymentOption" validate:"required,oneof=CASH CARD REFUND"`
}

// CheckoutLineRequest intención de venta en unidades canónicas.
type CheckoutLineRequest struct {
	ItemID   string `json:"itemId" validate:"required"`
	Quantity int64  `json:"quantity" validate:"gt=0"`
}

// ReceiptLineResponse línea congelada del recibo.
type ReceiptLineResponse struct {
	ID              string          `json:"id"`
	ItemID          string          `json:"itemId"`
	Name            string          `json:"name"`
	Quantity        int64           `json:"quantity"`
	QuantityLabel   string          `json:"quantityLabel"`
	MeasurementType string          `json:"measurementType"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	TaxRateBps      int             `json:"taxRateBps"`
	LineTotal       decimal.Decimal `json:"lineTotal"`
	LineTax         decimal.Decimal `json:"lineTax"`
}

// ReceiptResponse recibo completo.
type ReceiptResponse struct {
	ID            string                `json:"id"`
	PlaceID       string                `json:"placeId"`
	CashierID     string                `json:"cashierId"`
	PaymentOption string                `json:"paymentOption"`
	TotalAmount   decimal.Decimal       `json:"totalAmount"`
	TaxAmount     decimal.Decimal       `json:"taxAmount"`
	AmountGiven   decimal.Decimal       `json:"amountGiven"`
	ChangeAmount  decimal.Decimal       `json:"changeAmount"`
	Currency      string                `json:"currency"`
	CreatedAt     time.Time             `json:"createdAt"`
	Items         []ReceiptLineResponse `json:"items"`
}

// ReceiptListResponse historial paginado de recibos de un lugar.
type ReceiptListResponse struct {
	Items []ReceiptResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// CartQuoteLineRequest intención de carrito; sin unit la cantidad es canónica
// (salvo LENGTH, donde vacío significa metros).
type CartQuoteLineRequest struct {
	ItemID   string          `json:"itemId" validate:"required"`
	Quantity decimal.Decimal `json:"quantity"`
	Unit     string          `json:"unit"`
}

// CartQuoteRequest body para POST /api/places/:placeId/cart/quote.
type CartQuoteRequest struct {
	Items []CartQuoteLineRequest `json:"items" validate:"required,min=1,max=200,dive"`
}

// CartQuoteLine línea cotizada con el recorte aplicado.
type CartQuoteLine struct {
	ItemID        string          `json:"itemId"`
	Name          string          `json:"name"`
	Requested     int64           `json:"requested"`
	Quantity      int64           `json:"quantity"`
	QuantityLabel string          `json:"quantityLabel"`
	Clamped       bool            `json:"clamped"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	TaxRateBps    int             `json:"taxRateBps"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
}

// CartQuoteResponse vista previa verificada por el servidor; no reserva stock.
type CartQuoteResponse struct {
	PlaceID  string          `json:"placeId"`
	Currency string          `json:"currency"`
	Lines    []CartQuoteLine `json:"lines"`
	Total    decimal.Decimal `json:"total"`
	Tax      decimal.Decimal `json:"tax"`
}
