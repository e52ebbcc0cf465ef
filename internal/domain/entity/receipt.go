package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/puntoventa-api/internal/domain/measure"
)

// PaymentMethod forma de pago del recibo.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "CASH"
	PaymentCard   PaymentMethod = "CARD"
	PaymentRefund PaymentMethod = "REFUND"
)

// Valid indica si el método es conocido.
func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCash, PaymentCard, PaymentRefund:
		return true
	}
	return false
}

// Receipt registro inmutable de una venta (o devolución) completada.
// En devoluciones los montos son negativos.
type Receipt struct {
	ID             string
	TeamID         string
	PlaceID        string
	CashierID      string
	PaymentMethod  PaymentMethod
	TotalAmount    decimal.Decimal
	TaxAmount      decimal.Decimal
	AmountGiven    decimal.Decimal
	ChangeAmount   decimal.Decimal
	Currency       string
	IdempotencyKey string
	Lines          []ReceiptLineItem
	CreatedAt      time.Time
}

// ReceiptLineItem copia congelada de precio e impuesto al momento de la venta.
type ReceiptLineItem struct {
	ID              string
	ReceiptID       string
	ItemID          string
	ItemName        string
	Quantity        int64 // unidades canónicas, siempre positiva
	MeasurementType measure.Type
	UnitPrice       decimal.Decimal
	TaxRateBps      int
	LineTotal       decimal.Decimal
	LineTax         decimal.Decimal
}

// Clone copia el recibo con sus líneas.
func (r *Receipt) Clone() *Receipt {
	if r == nil {
		return nil
	}
	c := *r
	c.Lines = append([]ReceiptLineItem(nil), r.Lines...)
	return &c
}
