package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/puntoventa-api/internal/domain"
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/domain/repository"
)

var _ repository.AllocationRepository = (*AllocationRepo)(nil)

// AllocationRepo asignaciones lugar-artículo sobre PostgreSQL. Una fila por (place_id, item_id).
type AllocationRepo struct {
	q Querier
}

// NewAllocationRepository construye el adaptador de persistencia para asignaciones.
func NewAllocationRepository(q Querier) *AllocationRepo {
	return &AllocationRepo{q: q}
}

const allocationColumns = `id, place_id, item_id, allocated_quantity, created_at, updated_at`

func scanAllocation(row rowScanner) (*entity.PlaceAllocation, error) {
	var a entity.PlaceAllocation
	if err := row.Scan(&a.ID, &a.PlaceID, &a.ItemID, &a.AllocatedQuantity, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AllocationRepo) GetForUpdate(ctx context.Context, placeID, itemID string) (*entity.PlaceAllocation, error) {
	query := `SELECT ` + allocationColumns + ` FROM place_allocations
		WHERE place_id = $1 AND item_id = $2 FOR UPDATE`
	a, err := scanAllocation(r.q.QueryRow(ctx, query, placeID, itemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get allocation for update", err)
	}
	return a, nil
}

// EnsureForUpdate inserta la fila en 0 si falta (ON CONFLICT DO NOTHING) y luego la bloquea.
// Dos transacciones concurrentes sobre el mismo par terminan serializadas en el SELECT.
func (r *AllocationRepo) EnsureForUpdate(ctx context.Context, placeID, itemID string) (*entity.PlaceAllocation, error) {
	insert := `
		INSERT INTO place_allocations (id, place_id, item_id, allocated_quantity, created_at, updated_at)
		VALUES ($1, $2, $3, 0, NOW(), NOW())
		ON CONFLICT (place_id, item_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, insert, uuid.New().String(), placeID, itemID); err != nil {
		if isForeignKeyViolation(err) {
			return nil, wrap("ensure allocation", domain.ErrNotFound)
		}
		return nil, wrap("ensure allocation", err)
	}
	a, err := r.GetForUpdate(ctx, placeID, itemID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, wrap("ensure allocation", domain.ErrNotFound)
	}
	return a, nil
}

func (r *AllocationRepo) SetQuantity(ctx context.Context, id string, quantity int64) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE place_allocations SET allocated_quantity = $2, updated_at = NOW() WHERE id = $1`, id, quantity)
	if err != nil {
		return wrap("update allocation", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *AllocationRepo) Delete(ctx context.Context, placeID, itemID string) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM place_allocations WHERE place_id = $1 AND item_id = $2`, placeID, itemID)
	if err != nil {
		return false, wrap("delete allocation", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListByPlace asignaciones del lugar con los datos del artículo, ordenadas por nombre.
func (r *AllocationRepo) ListByPlace(ctx context.Context, placeID string) ([]*entity.AllocatedItem, error) {
	query := `
		SELECT a.id, a.place_id, a.item_id, a.allocated_quantity, a.created_at, a.updated_at,
			i.id, i.team_id, i.name, i.sku, i.category_id, i.measurement_type, i.price, i.cost_price, i.tax_rate_bps,
			i.active, i.color, i.size, i.brand, i.tags, i.image_url, i.warehouse_stock, i.created_at, i.updated_at
		FROM place_allocations a
		JOIN items i ON i.id = a.item_id
		WHERE a.place_id = $1
		ORDER BY i.name, i.id`
	rows, err := r.q.Query(ctx, query, placeID)
	if err != nil {
		return nil, wrap("list allocations", err)
	}
	defer rows.Close()

	list := make([]*entity.AllocatedItem, 0)
	for rows.Next() {
		var ai entity.AllocatedItem
		it, err := scanItem(prefixed{rows, func(dest []any) []any {
			a := &ai.Allocation
			return append([]any{&a.ID, &a.PlaceID, &a.ItemID, &a.AllocatedQuantity, &a.CreatedAt, &a.UpdatedAt}, dest...)
		}})
		if err != nil {
			return nil, wrap("scan allocation", err)
		}
		ai.Item = *it
		list = append(list, &ai)
	}
	return list, rows.Err()
}

// prefixed antepone destinos extra al Scan para reutilizar scanItem en consultas con JOIN.
type prefixed struct {
	row    rowScanner
	extend func(dest []any) []any
}

func (p prefixed) Scan(dest ...any) error {
	return p.row.Scan(p.extend(dest)...)
}
