package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/puntoventa-api/internal/domain"
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/domain/repository"
)

var _ repository.PlaceRepository = (*PlaceRepo)(nil)

// PlaceRepo implementación del puerto PlaceRepository sobre PostgreSQL.
type PlaceRepo struct {
	q Querier
}

// NewPlaceRepository construye el adaptador de persistencia para lugares.
func NewPlaceRepository(q Querier) *PlaceRepo {
	return &PlaceRepo{q: q}
}

func (r *PlaceRepo) Create(ctx context.Context, place *entity.Place) error {
	query := `
		INSERT INTO places (id, team_id, name, currency, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		place.ID, place.TeamID, place.Name, place.Currency, place.Active, place.CreatedAt, place.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrap("insert place", err)
	}
	return nil
}

func (r *PlaceRepo) Update(ctx context.Context, place *entity.Place) error {
	query := `UPDATE places SET name = $2, currency = $3, active = $4, updated_at = $5 WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, place.ID, place.Name, place.Currency, place.Active, place.UpdatedAt)
	if err != nil {
		return wrap("update place", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PlaceRepo) GetByID(ctx context.Context, id string) (*entity.Place, error) {
	query := `SELECT id, team_id, name, currency, active, created_at, updated_at FROM places WHERE id = $1`
	var p entity.Place
	err := r.q.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.TeamID, &p.Name, &p.Currency, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get place", err)
	}
	return &p, nil
}

// ListByTeam lista lugares del equipo ordenados por nombre.
func (r *PlaceRepo) ListByTeam(ctx context.Context, teamID string, limit, offset int) ([]*entity.Place, error) {
	query := `
		SELECT id, team_id, name, currency, active, created_at, updated_at
		FROM places WHERE team_id = $1
		ORDER BY name, id
		LIMIT NULLIF($2, 0) OFFSET $3`
	rows, err := r.q.Query(ctx, query, teamID, limit, offset)
	if err != nil {
		return nil, wrap("list places", err)
	}
	defer rows.Close()

	list := make([]*entity.Place, 0)
	for rows.Next() {
		var p entity.Place
		if err := rows.Scan(&p.ID, &p.TeamID, &p.Name, &p.Currency, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, wrap("scan place", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
