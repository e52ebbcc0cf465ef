package entity

import "time"

// Place punto de venta con moneda de presentación (no se convierte entre monedas).
type Place struct {
	ID        string
	TeamID    string
	Name      string
	Currency  string // ISO 4217
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
