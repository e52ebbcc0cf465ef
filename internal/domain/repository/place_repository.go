package repository

import (
	"context"

	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
)

// PlaceRepository define el puerto de persistencia para lugares de venta.
type PlaceRepository interface {
	Create(ctx context.Context, place *entity.Place) error
	Update(ctx context.Context, place *entity.Place) error
	GetByID(ctx context.Context, id string) (*entity.Place, error)
	ListByTeam(ctx context.Context, teamID string, limit, offset int) ([]*entity.Place, error)
}
