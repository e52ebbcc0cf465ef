package repository

import (
	"context"

	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
)

// AllocationRepository define el puerto de persistencia para asignaciones lugar-artículo.
type AllocationRepository interface {
	// GetForUpdate bloquea la asignación existente; (nil, nil) si no hay fila.
	GetForUpdate(ctx context.Context, placeID, itemID string) (*entity.PlaceAllocation, error)
	// EnsureForUpdate crea la fila en 0 si no existe y la devuelve bloqueada.
	EnsureForUpdate(ctx context.Context, placeID, itemID string) (*entity.PlaceAllocation, error)
	SetQuantity(ctx context.Context, id string, quantity int64) error
	// Delete elimina la fila; false si no existía.
	Delete(ctx context.Context, placeID, itemID string) (bool, error)
	ListByPlace(ctx context.Context, placeID string) ([]*entity.AllocatedItem, error)
}
