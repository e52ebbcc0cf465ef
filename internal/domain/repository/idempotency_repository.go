package repository

import (
	"context"

	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
)

// IdempotencyRepository llaves de idempotencia de cobro. Create devuelve domain.ErrDuplicate
// si la llave ya existe para el equipo.
type IdempotencyRepository interface {
	Get(ctx context.Context, teamID, key string) (*entity.IdempotencyRecord, error)
	Create(ctx context.Context, record *entity.IdempotencyRecord) error
}
