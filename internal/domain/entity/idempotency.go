package entity

import "time"

// IdempotencyRecord asocia una Idempotency-Key de cobro con el recibo que produjo.
type IdempotencyRecord struct {
	TeamID      string
	Key         string
	Fingerprint string // hash del cuerpo de la petición
	ReceiptID   string
	CreatedAt   time.Time
}
