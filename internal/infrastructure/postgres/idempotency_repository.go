package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/puntoventa-api/internal/domain"
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/domain/repository"
)

var _ repository.IdempotencyRepository = (*IdempotencyRepo)(nil)

// IdempotencyRepo llaves de cobro sobre PostgreSQL; PK (team_id, key).
type IdempotencyRepo struct {
	q Querier
}

// NewIdempotencyRepository construye el adaptador de persistencia para llaves de idempotencia.
func NewIdempotencyRepository(q Querier) *IdempotencyRepo {
	return &IdempotencyRepo{q: q}
}

func (r *IdempotencyRepo) Get(ctx context.Context, teamID, key string) (*entity.IdempotencyRecord, error) {
	query := `SELECT team_id, key, fingerprint, receipt_id, created_at FROM checkout_idempotency
		WHERE team_id = $1 AND key = $2`
	var rec entity.IdempotencyRecord
	err := r.q.QueryRow(ctx, query, teamID, key).Scan(&rec.TeamID, &rec.Key, &rec.Fingerprint, &rec.ReceiptID, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get idempotency key", err)
	}
	return &rec, nil
}

// Create reserva la llave. Si otra tx la insertó primero, el índice único la hace esperar
// y luego falla con 23505, que se devuelve como ErrDuplicate.
func (r *IdempotencyRepo) Create(ctx context.Context, rec *entity.IdempotencyRecord) error {
	query := `INSERT INTO checkout_idempotency (team_id, key, fingerprint, receipt_id, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.q.Exec(ctx, query, rec.TeamID, rec.Key, rec.Fingerprint, rec.ReceiptID, rec.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrap("insert idempotency key", err)
	}
	return nil
}
