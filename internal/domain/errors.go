package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound                   = errors.New("recurso no encontrado")
	ErrInvalidInput               = errors.New("entrada inválida")
	ErrDuplicate                  = errors.New("recurso duplicado")
	ErrUnauthorized               = errors.New("no autorizado")
	ErrForbidden                  = errors.New("acceso denegado")
	ErrConflict                   = errors.New("conflicto con el estado actual")
	ErrInsufficientStock          = errors.New("stock insuficiente en el punto de venta")
	ErrInsufficientWarehouseStock = errors.New("stock insuficiente en bodega")
	ErrInsufficientPayment        = errors.New("el monto recibido no cubre el total")
	ErrTransient                  = errors.New("falla transitoria de infraestructura, reintente")
	ErrIdempotencyInProgress      = errors.New("ya hay un cobro en curso con la misma llave de idempotencia")
)

// ValidationError describe una entrada rechazada antes de abrir cualquier transacción.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError construye el error de campo.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Unwrap permite errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// InsufficientStockError detalla la primera línea de un cobro que excede la asignación del lugar.
type InsufficientStockError struct {
	ItemID    string
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s: solicitado %d, disponible %d", e.ItemID, e.Requested, e.Available)
}

// Unwrap permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }
