package repository

import (
	"context"

	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
)

// ItemFilter criterios de listado de artículos.
type ItemFilter struct {
	Query      string // coincide con nombre o SKU (sin distinguir mayúsculas)
	ActiveOnly bool
	Limit      int // 0 = sin límite
	Offset     int
}

// ItemRepository define el puerto de persistencia para artículos (DIP).
// Los Get devuelven (nil, nil) cuando no existe la fila.
type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	Update(ctx context.Context, item *entity.Item) error
	GetByID(ctx context.Context, id string) (*entity.Item, error)
	// GetForUpdate bloquea la fila del artículo hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Item, error)
	// FindByNameForUpdate busca por (equipo, nombre, color) sin distinguir mayúsculas y bloquea la fila.
	FindByNameForUpdate(ctx context.Context, teamID, name, color string) (*entity.Item, error)
	List(ctx context.Context, teamID string, filter ItemFilter) ([]*entity.Item, error)
	Count(ctx context.Context, teamID string, filter ItemFilter) (int, error)
	SetWarehouseStock(ctx context.Context, id string, quantity int64) error
	// HasReferences indica si alguna asignación o línea de recibo referencia el artículo.
	HasReferences(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}
